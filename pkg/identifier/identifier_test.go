package identifier

import (
	"strings"
	"testing"
)

const (
	sampleCredDefID = "DID:3:CL:4574:Rental Property Business Licence"
	sampleSchemaID  = "4xE68b6S5VRFrKMMG1U95M:2:Person:1.0"
)

func TestParseCredDef(t *testing.T) {
	p := Parse(sampleCredDefID)
	if p.Kind != KindCredDef {
		t.Fatalf("Kind = %v, want %v", p.Kind, KindCredDef)
	}
	if p.DID != "DID" {
		t.Errorf("DID = %q", p.DID)
	}
	if p.SeqNo != "4574" {
		t.Errorf("SeqNo = %q, want 4574", p.SeqNo)
	}
	if p.SchemaName != "Rental Property Business Licence" {
		t.Errorf("SchemaName = %q", p.SchemaName)
	}
}

func TestParseSchema(t *testing.T) {
	p := Parse(sampleSchemaID)
	if p.Kind != KindSchema {
		t.Fatalf("Kind = %v, want %v", p.Kind, KindSchema)
	}
	if p.SchemaName != "Person" {
		t.Errorf("SchemaName = %q, want Person", p.SchemaName)
	}
	if p.SchemaVersion != "1.0" {
		t.Errorf("SchemaVersion = %q, want 1.0", p.SchemaVersion)
	}
}

func TestParseUnrecognized(t *testing.T) {
	for _, id := range []string{"", "plain", "DID:4:something", "a:b"} {
		if p := Parse(id); p.Kind != KindUnrecognized {
			t.Errorf("Parse(%q).Kind = %v, want unrecognized", id, p.Kind)
		}
	}
}

func TestCredDefSeqNo(t *testing.T) {
	if got := CredDefSeqNo(sampleCredDefID); got != "4574" {
		t.Fatalf("CredDefSeqNo = %q, want 4574", got)
	}
	if got := CredDefSeqNo(sampleSchemaID); got != "" {
		t.Fatalf("CredDefSeqNo(schema) = %q, want empty", got)
	}
}

func TestExplorerURL(t *testing.T) {
	url := ExplorerURL(sampleCredDefID, "candy-prod")
	if !strings.Contains(url, "/tx/CANDY_PROD/domain/4574") {
		t.Fatalf("ExplorerURL = %q, want /tx/CANDY_PROD/domain/4574 fragment", url)
	}

	if url := ExplorerURL(sampleSchemaID, "candy-prod"); url != "" {
		t.Errorf("ExplorerURL(schema) = %q, want empty", url)
	}

	if url := ExplorerURL(sampleCredDefID, "sovrin-main"); url != "" {
		t.Errorf("ExplorerURL(unknown explorer) = %q, want empty", url)
	}
}

func TestExplorerURLBorrowing(t *testing.T) {
	siblings := []string{
		sampleSchemaID,
		"4xE68b6S5VRFrKMMG1U95M:3:CL:1234:Person",
	}

	url := ExplorerURLBorrowing(sampleSchemaID, "candy-test", siblings)
	if !strings.Contains(url, "/tx/CANDY_TEST/domain/1234") {
		t.Fatalf("borrowing strategy = %q, want sibling seqNo 1234", url)
	}

	// No sibling with a matching tag: nothing to borrow.
	if url := ExplorerURLBorrowing(sampleSchemaID, "candy-test", []string{sampleCredDefID}); url != "" {
		t.Errorf("borrowing with mismatched sibling = %q, want empty", url)
	}

	// Cred def IDs behave identically to the strict strategy.
	if url := ExplorerURLBorrowing(sampleCredDefID, "candy-prod", nil); !strings.Contains(url, "/domain/4574") {
		t.Errorf("borrowing(cred def) = %q", url)
	}
}
