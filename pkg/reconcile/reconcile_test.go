package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krobinsonca/aries-oca-explorer/pkg/bundle"
	"github.com/krobinsonca/aries-oca-explorer/pkg/candyscan"
)

type fakeFetcher struct {
	pages map[candyscan.Network]candyscan.Page
	errs  map[candyscan.Network]error
	calls []candyscan.Network
}

func (f *fakeFetcher) FetchTransactions(_ context.Context, network candyscan.Network, page, pageSize int) (candyscan.Page, error) {
	f.calls = append(f.calls, network)
	if err := f.errs[network]; err != nil {
		return candyscan.Page{}, err
	}
	return f.pages[network], nil
}

func tx(network candyscan.Network, txType candyscan.TxType, seqNo int, txTime int64, id string, data map[string]any) candyscan.Transaction {
	if data == nil {
		data = map[string]any{}
	}
	return candyscan.Transaction{
		SeqNo:      seqNo,
		TxType:     txType,
		TxTime:     txTime,
		Identifier: id,
		Data:       data,
		Network:    network,
	}
}

func TestFindMissingExclusivity(t *testing.T) {
	catalog := []bundle.Record{
		{ID: "DID:2:Person:1.0", IDs: []string{"DID:2:Person:1.0", "DID:3:CL:10:Person"}},
	}

	fetcher := &fakeFetcher{pages: map[candyscan.Network]candyscan.Page{
		candyscan.NetworkProd: {Transactions: []candyscan.Transaction{
			// Known: present in the catalog's ids.
			tx(candyscan.NetworkProd, candyscan.TxClaimDef, 10, 100, "DID:3:CL:10:Person", nil),
			// Missing cred def.
			tx(candyscan.NetworkProd, candyscan.TxClaimDef, 20, 200, "DID:3:CL:20:Licence", nil),
			// Missing schema.
			tx(candyscan.NetworkProd, candyscan.TxSchema, 30, 300, "DID:2:Member:1.1", nil),
		}},
	}}

	r := &Reconciler{Fetcher: fetcher}
	missing := r.FindMissing(context.Background(), catalog)

	require.Len(t, missing, 2)

	known := map[string]struct{}{}
	for _, rec := range catalog {
		for _, id := range rec.IDs {
			known[id] = struct{}{}
		}
	}
	for _, m := range missing {
		_, exists := known[m.ID]
		assert.False(t, exists, "missing record %s must not be in the catalog", m.ID)
	}
}

func TestFindMissingClassification(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[candyscan.Network]candyscan.Page{
		candyscan.NetworkTest: {Transactions: []candyscan.Transaction{
			// Schema without a schema-shaped identifier: skipped.
			tx(candyscan.NetworkTest, candyscan.TxSchema, 1, 10, "just-a-name", map[string]any{"name": "x", "version": "1"}),
			// Claim def with the id in data.ref.
			tx(candyscan.NetworkTest, candyscan.TxClaimDef, 2, 20, "", map[string]any{"ref": "DID:3:CL:2:Card"}),
			// Claim def with only a schema reference: skipped.
			tx(candyscan.NetworkTest, candyscan.TxClaimDef, 3, 30, "", map[string]any{"schemaId": "DID:2:Card:1.0"}),
			// Unknown type: skipped.
			tx(candyscan.NetworkTest, "NYM", 4, 40, "DID:2:Card:1.0", nil),
		}},
	}}

	r := &Reconciler{Fetcher: fetcher}
	missing := r.FindMissing(context.Background(), nil)

	require.Len(t, missing, 1)
	m := missing[0]
	assert.Equal(t, "DID:3:CL:2:Card", m.ID)
	assert.Equal(t, candyscan.TxClaimDef, m.Type)
	assert.Equal(t, "Card", m.Name)
	assert.Equal(t, "candy-test", m.NetworkNormalized)
	assert.Equal(t, "CANdy Test", m.NetworkDisplayName)
	assert.Equal(t, "https://candyscan.idlab.org/tx/CANDY_TEST/domain/2", m.ExplorerURL)
}

func TestFindMissingNetworkFailureTolerated(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[candyscan.Network]candyscan.Page{
			candyscan.NetworkProd: {Transactions: []candyscan.Transaction{
				tx(candyscan.NetworkProd, candyscan.TxSchema, 1, 10, "DID:2:Person:1.0", nil),
			}},
		},
		errs: map[candyscan.Network]error{
			candyscan.NetworkDev:  errors.New("timeout"),
			candyscan.NetworkTest: errors.New("boom"),
		},
	}

	r := &Reconciler{Fetcher: fetcher}
	missing := r.FindMissing(context.Background(), nil)

	require.Len(t, missing, 1, "surviving network still contributes")
	assert.Equal(t, []candyscan.Network{candyscan.NetworkDev, candyscan.NetworkTest, candyscan.NetworkProd}, fetcher.calls,
		"all networks attempted sequentially in fixed order")
}

func TestFindMissingSortStability(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[candyscan.Network]candyscan.Page{
		candyscan.NetworkDev: {Transactions: []candyscan.Transaction{
			tx(candyscan.NetworkDev, candyscan.TxSchema, 1, 100, "A:2:First:1.0", nil),
			tx(candyscan.NetworkDev, candyscan.TxSchema, 2, 300, "A:2:Newest:1.0", nil),
		}},
		candyscan.NetworkTest: {Transactions: []candyscan.Transaction{
			// Same txTime as seqNo 1: input order must be preserved.
			tx(candyscan.NetworkTest, candyscan.TxSchema, 3, 100, "B:2:Tie:1.0", nil),
		}},
	}}

	r := &Reconciler{Fetcher: fetcher}
	missing := r.FindMissing(context.Background(), nil)

	require.Len(t, missing, 3)
	assert.Equal(t, "A:2:Newest:1.0", missing[0].ID, "newest first")
	assert.Equal(t, "A:2:First:1.0", missing[1].ID)
	assert.Equal(t, "B:2:Tie:1.0", missing[2].ID, "tie keeps input order")
}

func TestFindMissingSchemaFromData(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[candyscan.Network]candyscan.Page{
		candyscan.NetworkTest: {Transactions: []candyscan.Transaction{
			// Identifier carries the schema marker but is not a complete
			// schema ID; name and version come from the transaction data.
			tx(candyscan.NetworkTest, candyscan.TxSchema, 5, 50, "DID:2:Permit", map[string]any{"name": "Permit", "version": "2.0"}),
			// Same data shape without the marker: skipped.
			tx(candyscan.NetworkTest, candyscan.TxSchema, 6, 60, "DID", map[string]any{"name": "Permit", "version": "2.0"}),
		}},
	}}

	r := &Reconciler{Fetcher: fetcher}
	missing := r.FindMissing(context.Background(), nil)

	require.Len(t, missing, 1)
	assert.Equal(t, "DID:2:Permit", missing[0].ID)
	assert.Equal(t, "Permit", missing[0].Name)
	assert.Equal(t, "2.0", missing[0].Version)
}

func TestFindMissingSchemaNameVersionFromID(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[candyscan.Network]candyscan.Page{
		candyscan.NetworkProd: {Transactions: []candyscan.Transaction{
			tx(candyscan.NetworkProd, candyscan.TxSchema, 9, 10, "DID:2:Member Card:1.5.1", nil),
		}},
	}}

	r := &Reconciler{Fetcher: fetcher}
	missing := r.FindMissing(context.Background(), nil)

	require.Len(t, missing, 1)
	assert.Equal(t, "Member Card", missing[0].Name)
	assert.Equal(t, "1.5.1", missing[0].Version)
}
