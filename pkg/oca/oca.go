// Package oca is the read-only boundary to overlay-bundle descriptors. It
// fetches a descriptor and exposes the handful of fields the explorer
// reads; it never constructs or validates the descriptor shape.
package oca

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/whttp"
)

// Bundle is a view over one raw overlay-bundle descriptor.
type Bundle struct {
	ID  string
	raw string
}

// NewBundle wraps a raw descriptor. Descriptor files usually hold a
// one-element array; the first element is taken in that case.
func NewBundle(id, raw string) *Bundle {
	parsed := gjson.Parse(raw)
	if parsed.IsArray() {
		if first := parsed.Get("0"); first.Exists() {
			raw = first.Raw
		}
	}
	return &Bundle{ID: id, raw: raw}
}

// FetchBundle retrieves the descriptor for one catalog record. Unlike the
// companion-document paths, a failure here propagates: without the
// descriptor there is nothing to show for a selected record.
func FetchBundle(ctx context.Context, client *retryablehttp.Client, id, url string) (*Bundle, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.Request{URL: url}, client)
	if err != nil {
		return nil, fmt.Errorf("overlay bundle fetch: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("overlay bundle fetch: status %d", res.StatusCode)
	}
	return NewBundle(id, res.BodyString), nil
}

// FetchBundleData retrieves the optional sample-data CSV that sits next to
// some descriptors and returns its first row as attribute values. Most
// bundles don't have one; every failure mode yields an empty map.
func FetchBundleData(ctx context.Context, client *retryablehttp.Client, bundleURL string) map[string]string {
	url := strings.Replace(bundleURL, "OCABundle.json", "testdata.csv", 1)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	res, err := whttp.SendHTTPRequest(ctx, &whttp.Request{URL: url}, client)
	if err != nil || res.StatusCode < 200 || res.StatusCode > 299 {
		return map[string]string{}
	}
	if !strings.Contains(res.BodyString, ",") {
		return map[string]string{}
	}

	reader := csv.NewReader(strings.NewReader(res.BodyString))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return map[string]string{}
	}

	header := rows[0]
	first := rows[1]
	data := make(map[string]string, len(header))
	for i, col := range header {
		if i < len(first) {
			data[strings.TrimSpace(col)] = strings.TrimSpace(first[i])
		}
	}
	return data
}

// Branding returns the branding overlay as a generic map, or nil.
func (b *Bundle) Branding() map[string]any {
	return b.overlayByType("branding")
}

// Metadata returns the meta overlay as a generic map, or nil.
func (b *Bundle) Metadata() map[string]any {
	return b.overlayByType("meta")
}

// Languages lists the distinct languages declared across overlays, in
// first-seen order.
func (b *Bundle) Languages() []string {
	var langs []string
	seen := map[string]bool{}
	gjson.Get(b.raw, "overlays").ForEach(func(_, overlay gjson.Result) bool {
		lang := overlay.Get("language").String()
		if lang != "" && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
		return true
	})
	return langs
}

// CaptureBaseAttributes returns the attribute name/type map of the capture
// base.
func (b *Bundle) CaptureBaseAttributes() map[string]string {
	attrs := map[string]string{}
	gjson.Get(b.raw, "capture_base.attributes").ForEach(func(key, value gjson.Result) bool {
		attrs[key.String()] = value.String()
		return true
	})
	return attrs
}

// Attribute returns the declared type of one capture-base attribute, or "".
func (b *Bundle) Attribute(name string) string {
	return gjson.Get(b.raw, "capture_base.attributes."+gjsonEscape(name)).String()
}

// Root exposes the branding and metadata overlays as one structure for the
// best-string extractor.
func (b *Bundle) Root() map[string]any {
	root := map[string]any{}
	if branding := b.Branding(); branding != nil {
		root["branding"] = branding
	}
	if metadata := b.Metadata(); metadata != nil {
		root["metadata"] = metadata
	}
	return root
}

func (b *Bundle) overlayByType(kind string) map[string]any {
	var found map[string]any
	gjson.Get(b.raw, "overlays").ForEach(func(_, overlay gjson.Result) bool {
		t := strings.ToLower(overlay.Get("type").String())
		if !strings.Contains(t, kind) {
			return true
		}
		if m, ok := overlay.Value().(map[string]any); ok {
			found = m
			return false
		}
		return true
	})
	if found == nil {
		utils.Log.Debugf("bundle %s: no %s overlay", b.ID, kind)
	}
	return found
}

func gjsonEscape(s string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return replacer.Replace(s)
}
