package bundle

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "1", Name: "Person Credential", Org: "City of Vancouver", Desc: "identity", IDs: []string{"A:2:Person:1.0"}, LedgerNormalized: "candy-test", LedgerDisplayName: "CANdy Test"},
		{ID: "2", Name: "Business Licence", Org: "Province", IDs: []string{"B:3:CL:7:Licence"}, LedgerNormalized: "candy-prod", LedgerDisplayName: "CANdy Production"},
		{ID: "3", Name: "Member Card", Org: "LSBC", IDs: []string{"C:2:Member:1.0"}},
		{ID: "4", Name: "Pilot Credential", Org: "Test Org", IDs: []string{"D:2:Pilot:0.1"}, LedgerNormalized: "bcovrin-test", LedgerDisplayName: "BCovrin Test"},
	}
}

func TestFilterBySearchTerm(t *testing.T) {
	tests := []struct {
		term     string
		expected []string // record IDs
	}{
		{"person", []string{"1"}},
		{"VANCOUVER", []string{"1"}},
		{"licence", []string{"2"}},   // matches name and id
		{"3:CL:7", []string{"2"}},    // id substring
		{"identity", []string{"1"}},  // desc substring
		{"", []string{"1", "2", "3", "4"}},
		{"nope", nil},
	}

	for _, tc := range tests {
		got := Filter(sampleRecords(), FilterOptions{SearchTerm: tc.term})
		var ids []string
		for _, r := range got {
			ids = append(ids, r.ID)
		}
		if !reflect.DeepEqual(ids, tc.expected) {
			t.Errorf("Filter(term=%q) = %v, want %v", tc.term, ids, tc.expected)
		}
	}
}

func TestFilterByLedger(t *testing.T) {
	got := Filter(sampleRecords(), FilterOptions{Ledger: "candy-prod"})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("ledger filter = %+v", got)
	}
}

func TestGroupByLedgerOrder(t *testing.T) {
	groups := GroupByLedger(sampleRecords())

	var order []string
	for _, g := range groups {
		order = append(order, g.Ledger)
	}
	want := []string{"candy-prod", "candy-test", "bcovrin-test", "unknown"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("group order = %v, want %v", order, want)
	}

	if groups[3].DisplayName != "Unknown Ledger" {
		t.Errorf("unknown group label = %q", groups[3].DisplayName)
	}
}

func TestLedgerOptionsCounts(t *testing.T) {
	records := append(sampleRecords(), Record{ID: "5", Name: "Another", LedgerNormalized: "candy-prod", LedgerDisplayName: "CANdy Production"})
	options := LedgerOptions(records)

	if options[0].Value != "candy-prod" || options[0].Count != 2 {
		t.Fatalf("first option = %+v, want candy-prod count 2", options[0])
	}
	if options[0].Label != "CANdy Production" {
		t.Errorf("label = %q", options[0].Label)
	}
}

func TestSortForDisplay(t *testing.T) {
	records := sampleRecords()
	SortForDisplay(records)

	var orgs []string
	for _, r := range records {
		orgs = append(orgs, r.Org)
	}
	want := []string{"City of Vancouver", "LSBC", "Province", "Test Org"}
	if !reflect.DeepEqual(orgs, want) {
		t.Fatalf("sorted orgs = %v, want %v", orgs, want)
	}
}
