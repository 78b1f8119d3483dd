package bundle

import (
	"sort"
	"strings"

	"github.com/krobinsonca/aries-oca-explorer/pkg/ledger"
)

// FilterOptions narrows a catalog. Zero values match everything.
type FilterOptions struct {
	SearchTerm string // case-insensitive substring across name/desc/org/ids
	Ledger     string // normalized ledger token, exact match
}

// Filter returns the records matching opts, preserving input order.
func Filter(records []Record, opts FilterOptions) []Record {
	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))

	var out []Record
	for _, rec := range records {
		if opts.Ledger != "" && rec.LedgerNormalized != opts.Ledger {
			continue
		}
		if term != "" && !matchesTerm(rec, term) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesTerm(rec Record, term string) bool {
	if strings.Contains(strings.ToLower(rec.Name), term) ||
		strings.Contains(strings.ToLower(rec.Desc), term) ||
		strings.Contains(strings.ToLower(rec.Org), term) {
		return true
	}
	for _, id := range rec.IDs {
		if strings.Contains(strings.ToLower(id), term) {
			return true
		}
	}
	return false
}

// ledgerRank pins the CANdy ledgers to the top of every grouped view.
var ledgerRank = map[string]int{
	"candy-prod": 0,
	"candy-test": 1,
	"candy-dev":  2,
}

func rankLedger(token string) (int, bool) {
	r, ok := ledgerRank[token]
	return r, ok
}

// LedgerGroup is one displayed ledger section.
type LedgerGroup struct {
	Ledger      string
	DisplayName string
	Records     []Record
}

// GroupByLedger buckets records by normalized ledger in the fixed display
// order: CANdy networks first, then other ledgers alphabetically, records
// without ledger info last.
func GroupByLedger(records []Record) []LedgerGroup {
	buckets := map[string][]Record{}
	for _, rec := range records {
		key := rec.LedgerNormalized
		if key == "" {
			key = ledger.Unknown
		}
		buckets[key] = append(buckets[key], rec)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessLedger(keys[i], keys[j])
	})

	groups := make([]LedgerGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, LedgerGroup{
			Ledger:      k,
			DisplayName: ledger.DisplayName(k),
			Records:     buckets[k],
		})
	}
	return groups
}

func lessLedger(a, b string) bool {
	ra, aPinned := rankLedger(a)
	rb, bPinned := rankLedger(b)
	switch {
	case aPinned && bPinned:
		return ra < rb
	case aPinned:
		return true
	case bPinned:
		return false
	}
	if (a == ledger.Unknown) != (b == ledger.Unknown) {
		return b == ledger.Unknown
	}
	return a < b
}

// LedgerOption is one dropdown entry with its record count.
type LedgerOption struct {
	Value string
	Label string
	Count int
}

// LedgerOptions lists every ledger present in the catalog, ordered like
// GroupByLedger, with per-ledger counts.
func LedgerOptions(records []Record) []LedgerOption {
	groups := GroupByLedger(records)
	options := make([]LedgerOption, 0, len(groups))
	for _, g := range groups {
		options = append(options, LedgerOption{
			Value: g.Ledger,
			Label: g.DisplayName,
			Count: len(g.Records),
		})
	}
	return options
}

// SortForDisplay orders records by organization then name, both
// case-insensitive, the way the catalog is browsed.
func SortForDisplay(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		oi := strings.ToLower(records[i].Org)
		oj := strings.ToLower(records[j].Org)
		if oi != oj {
			return oi < oj
		}
		return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
	})
}
