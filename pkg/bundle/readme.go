package bundle

import (
	"context"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/whttp"
)

// ReadmeInfo is the ledger/location pair scraped from a bundle's README.
// The zero value means the README was missing or carried no ledger table.
type ReadmeInfo struct {
	Ledger    string
	LedgerURL string
}

// ReadmeCache remembers README resolution per bundle path for the session.
// Companion documents are assumed static, so entries never expire. Absence
// is cached too: a missing README stays missing.
type ReadmeCache struct {
	c *gocache.Cache
}

func NewReadmeCache() *ReadmeCache {
	return &ReadmeCache{c: gocache.New(gocache.NoExpiration, gocache.NoExpiration)}
}

func (rc *ReadmeCache) get(path string) (ReadmeInfo, bool) {
	v, ok := rc.c.Get(path)
	if !ok {
		return ReadmeInfo{}, false
	}
	info, ok := v.(ReadmeInfo)
	return info, ok
}

func (rc *ReadmeCache) set(path string, info ReadmeInfo) {
	rc.c.Set(path, info, gocache.NoExpiration)
}

// readmePath derives the companion-document path: same directory as the
// bundle descriptor, fixed file name.
func readmePath(bundlePath string) string {
	return strings.Replace(bundlePath, "OCABundle.json", "README.md", 1)
}

// resolveReadme fetches and parses the companion README for one bundle.
// Every failure mode degrades to the zero ReadmeInfo.
func (c *Client) resolveReadme(ctx context.Context, bundlePath string) ReadmeInfo {
	if info, ok := c.cache.get(bundlePath); ok {
		return info
	}

	url := c.cfg.RawContentURL + "/" + readmePath(bundlePath)

	res, err := whttp.SendHTTPRequest(ctx, &whttp.Request{URL: url}, c.http)
	if err != nil {
		utils.Log.Debugf("README fetch failed for %s: %v", bundlePath, err)
		c.cache.set(bundlePath, ReadmeInfo{})
		return ReadmeInfo{}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		utils.Log.Debugf("README not found for %s: status %d", bundlePath, res.StatusCode)
		c.cache.set(bundlePath, ReadmeInfo{})
		return ReadmeInfo{}
	}

	info := parseReadme(res.BodyString)
	c.cache.set(bundlePath, info)
	return info
}

// parseReadme scans for a markdown table whose header carries the three
// known column labels and reads the first data row beneath it. Multiple data
// rows use only the first; a header with no data rows yields nothing.
func parseReadme(content string) ReadmeInfo {
	lines := strings.Split(content, "\n")

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, "| Identifier") ||
			!strings.Contains(line, "| Location") ||
			!strings.Contains(line, "| URL") {
			continue
		}

		for j := i + 1; j < len(lines); j++ {
			dataLine := strings.TrimSpace(lines[j])
			if dataLine == "" || !strings.Contains(dataLine, "|") {
				break
			}
			if strings.Contains(dataLine, "---") {
				continue
			}

			cells := splitTableRow(dataLine)
			if len(cells) >= 3 {
				return ReadmeInfo{Ledger: cells[1], LedgerURL: cells[2]}
			}
		}
		break
	}

	return ReadmeInfo{}
}

func splitTableRow(line string) []string {
	var cells []string
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}
