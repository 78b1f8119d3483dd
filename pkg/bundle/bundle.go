// Package bundle acquires the overlay-bundle catalog, deduplicates it by
// underlying bundle resource path and enriches each record with ledger
// metadata scraped from the per-bundle README.
package bundle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/ledger"
	"github.com/krobinsonca/aries-oca-explorer/pkg/whttp"
)

// Record is one cataloged overlay bundle after deduplication. Ledger fields
// stay empty when README resolution fails; that is an absence, not an error.
type Record struct {
	ID            string   `json:"id"`
	IDs           []string `json:"ids"`
	Org           string   `json:"org,omitempty"`
	Name          string   `json:"name,omitempty"`
	Desc          string   `json:"desc,omitempty"`
	Type          string   `json:"type,omitempty"`
	OCABundlePath string   `json:"ocabundle"`
	SHASum        string   `json:"shasum,omitempty"`

	Ledger            string `json:"ledger,omitempty"`
	LedgerURL         string `json:"ledgerUrl,omitempty"`
	LedgerNormalized  string `json:"ledgerNormalized,omitempty"`
	LedgerDisplayName string `json:"ledgerDisplayName,omitempty"`
}

// CatalogFetchError reports a failed or malformed catalog fetch. This is the
// only fatal error in the acquisition path.
type CatalogFetchError struct {
	StatusCode int
	Err        error
}

func (e *CatalogFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("overlay bundle catalog fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("overlay bundle catalog fetch failed: status %d", e.StatusCode)
}

func (e *CatalogFetchError) Unwrap() error { return e.Err }

// Config carries the catalog endpoints and batching knobs.
type Config struct {
	ListURL       string // catalog site root
	ListFile      string // catalog file name under ListURL
	RawContentURL string // raw-content root for README companion documents

	BatchSize  int           // concurrent README fetches per batch
	BatchDelay time.Duration // pause between batches
	Timeout    time.Duration // per-request timeout
}

func DefaultConfig() Config {
	return Config{
		ListURL:       "https://bcgov.github.io/aries-oca-bundles",
		ListFile:      "ocabundleslist.json",
		RawContentURL: "https://raw.githubusercontent.com/bcgov/aries-oca-bundles/main",
		BatchSize:     5,
		BatchDelay:    200 * time.Millisecond,
		Timeout:       10 * time.Second,
	}
}

// Client fetches and enriches the catalog. The README cache is injected so
// callers control its lifetime.
type Client struct {
	http  *retryablehttp.Client
	cfg   Config
	cache *ReadmeCache
}

func NewClient(httpClient *retryablehttp.Client, cfg Config, cache *ReadmeCache) *Client {
	if httpClient == nil {
		httpClient = whttp.NewClient(cfg.Timeout)
	}
	if cache == nil {
		cache = NewReadmeCache()
	}
	return &Client{http: httpClient, cfg: cfg, cache: cache}
}

// FetchList retrieves the raw catalog, groups entries sharing an ocabundle
// path into single records and resolves ledger metadata per group in bounded
// batches. A group's resolution failure leaves its ledger fields empty.
func (c *Client) FetchList(ctx context.Context) ([]Record, error) {
	url := c.cfg.ListURL + "/" + c.cfg.ListFile

	res, err := whttp.SendHTTPRequest(ctx, &whttp.Request{URL: url}, c.http)
	if err != nil {
		return nil, &CatalogFetchError{Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &CatalogFetchError{StatusCode: res.StatusCode}
	}

	records, err := GroupEntries(res.BodyString)
	if err != nil {
		return nil, &CatalogFetchError{Err: err}
	}

	c.enrich(ctx, records)
	return records, nil
}

// GroupEntries decodes the raw catalog array and collapses entries sharing
// an ocabundle path into one record whose IDs preserve first-seen order.
func GroupEntries(body string) ([]Record, error) {
	parsed := gjson.Parse(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("catalog body is not a JSON array")
	}

	var records []Record
	index := map[string]int{}

	parsed.ForEach(func(_, entry gjson.Result) bool {
		id := entry.Get("id").String()
		path := entry.Get("ocabundle").String()

		if i, seen := index[path]; seen {
			rec := &records[i]
			if id != "" && !utils.ContainsString(rec.IDs, id) {
				rec.IDs = append(rec.IDs, id)
			}
			return true
		}

		rec := Record{
			ID:            id,
			Org:           entry.Get("org").String(),
			Name:          entry.Get("name").String(),
			Desc:          entry.Get("desc").String(),
			Type:          entry.Get("type").String(),
			OCABundlePath: path,
			SHASum:        entry.Get("shasum").String(),
		}
		if id != "" {
			rec.IDs = []string{id}
		}
		index[path] = len(records)
		records = append(records, rec)
		return true
	})

	return records, nil
}

// enrich resolves README ledger info for every record, BatchSize at a time.
// All fetches within a batch run concurrently; outcomes are collected before
// the next batch starts so one failure cannot abort its siblings.
func (c *Client) enrich(ctx context.Context, records []Record) {
	batch := c.cfg.BatchSize
	if batch <= 0 {
		batch = 5
	}

	for start := 0; start < len(records); start += batch {
		end := start + batch
		if end > len(records) {
			end = len(records)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(rec *Record) {
				defer wg.Done()
				info := c.resolveReadme(ctx, rec.OCABundlePath)
				if info.Ledger == "" {
					return
				}
				rec.Ledger = info.Ledger
				rec.LedgerURL = info.LedgerURL
				rec.LedgerNormalized = ledger.Normalize(info.Ledger)
				rec.LedgerDisplayName = ledger.DisplayName(rec.LedgerNormalized)
			}(&records[i])
		}
		wg.Wait()

		if end < len(records) && c.cfg.BatchDelay > 0 {
			time.Sleep(c.cfg.BatchDelay)
		}
	}
}
