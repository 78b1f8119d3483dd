// Package reconcile compares ledger transactions against the overlay-bundle
// catalog and reports schemas and credential definitions that have no
// bundle yet.
package reconcile

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/bundle"
	"github.com/krobinsonca/aries-oca-explorer/pkg/candyscan"
	"github.com/krobinsonca/aries-oca-explorer/pkg/identifier"
	"github.com/krobinsonca/aries-oca-explorer/pkg/ledger"
)

// Missing is one ledger entity without a matching catalog record.
type Missing struct {
	ID      string           `json:"id"`
	Type    candyscan.TxType `json:"type"`
	Name    string           `json:"name,omitempty"`
	Version string           `json:"version,omitempty"`
	SeqNo   int              `json:"seqNo"`
	TxTime  int64            `json:"txTime"`

	Network            candyscan.Network `json:"network"`
	NetworkNormalized  string            `json:"networkNormalized"`
	NetworkDisplayName string            `json:"networkDisplayName"`
	ExplorerURL        string            `json:"explorerUrl,omitempty"`
}

// Fetcher is the transaction source; satisfied by *candyscan.Client.
type Fetcher interface {
	FetchTransactions(ctx context.Context, network candyscan.Network, page, pageSize int) (candyscan.Page, error)
}

// Reconciler drives one reconciliation pass.
type Reconciler struct {
	Fetcher      Fetcher
	ExplorerBase string // defaults to the candyscan explorer
	PageSize     int    // defaults to 50
}

// FindMissing fetches the first page of recent transactions per network
// (sequentially, in the fixed network order), classifies each into a
// schema or credential-definition identifier and emits every identifier
// not present in any record's ID set. One network's fetch failure is
// logged and skipped. Output is sorted by transaction time, newest first;
// ties keep input order.
func (r *Reconciler) FindMissing(ctx context.Context, records []bundle.Record) []Missing {
	base := r.ExplorerBase
	if base == "" {
		base = candyscan.DefaultBaseURL
	}
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	known := map[string]struct{}{}
	for _, rec := range records {
		for _, id := range rec.IDs {
			known[id] = struct{}{}
		}
	}

	var missing []Missing
	for _, network := range candyscan.Networks() {
		page, err := r.Fetcher.FetchTransactions(ctx, network, 1, pageSize)
		if err != nil {
			utils.Log.Warnf("skipping %s: %v", network, err)
			continue
		}

		for _, tx := range page.Transactions {
			id, name, version, ok := classify(tx)
			if !ok {
				continue
			}
			if _, exists := known[id]; exists {
				continue
			}

			normalized := ledger.NormalizeNetwork(string(tx.Network))
			missing = append(missing, Missing{
				ID:                 id,
				Type:               tx.TxType,
				Name:               name,
				Version:            version,
				SeqNo:              tx.SeqNo,
				TxTime:             tx.TxTime,
				Network:            tx.Network,
				NetworkNormalized:  normalized,
				NetworkDisplayName: ledger.DisplayName(normalized),
				ExplorerURL:        explorerURL(base, tx),
			})
		}
	}

	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].TxTime > missing[j].TxTime
	})
	return missing
}

// classify derives a well-formed identifier from one transaction. Schemas
// without a full schema ID and credential definitions that only reference
// their schema are skipped: neither can be represented.
func classify(tx candyscan.Transaction) (id, name, version string, ok bool) {
	switch tx.TxType {
	case candyscan.TxSchema:
		if p := identifier.Parse(tx.Identifier); p.Kind == identifier.KindSchema {
			name, version = p.SchemaName, p.SchemaVersion
			if name == "" {
				name, _ = tx.Data["name"].(string)
			}
			if version == "" {
				version, _ = tx.Data["version"].(string)
			}
			return tx.Identifier, name, version, true
		}
		// Embedded data alone lacks the DID component; the identifier must
		// still carry the schema marker to be representable.
		name, _ = tx.Data["name"].(string)
		version, _ = tx.Data["version"].(string)
		if name != "" && version != "" && strings.Contains(tx.Identifier, ":2:") {
			return tx.Identifier, name, version, true
		}
		return "", "", "", false

	case candyscan.TxClaimDef:
		if p := identifier.Parse(tx.Identifier); p.Kind == identifier.KindCredDef {
			return tx.Identifier, p.SchemaName, "", true
		}
		if ref, isStr := tx.Data["ref"].(string); isStr {
			if p := identifier.Parse(ref); p.Kind == identifier.KindCredDef {
				return ref, p.SchemaName, "", true
			}
		}
		return "", "", "", false
	}

	return "", "", "", false
}

// explorerURL links straight to the transaction. The network token comes
// from the raw network enum here, not a normalized ledger value.
func explorerURL(base string, tx candyscan.Transaction) string {
	if tx.SeqNo <= 0 {
		return ""
	}
	return base + "/tx/" + string(tx.Network) + "/domain/" + strconv.Itoa(tx.SeqNo)
}
