// Package identifier parses the two AnonCreds identifier formats found on
// Indy ledgers:
//
//	schema ID:   <DID>:2:<schema name>:<version>
//	cred def ID: <DID>:3:CL:<schema seqNo>:<tag>
//
// The tag of a credential definition is conventionally the schema name.
package identifier

import (
	"regexp"
	"strings"

	"github.com/krobinsonca/aries-oca-explorer/pkg/ledger"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindSchema
	KindCredDef
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindCredDef:
		return "cred-def"
	default:
		return "unrecognized"
	}
}

// ParsedID is the structural form of a ledger identifier.
type ParsedID struct {
	Kind          Kind
	DID           string
	SchemaName    string
	SchemaVersion string
	SeqNo         string // cred def only
	Tag           string // cred def only
	Raw           string
}

const credDefMarker = ":3:CL:"

var credDefSeqNoRe = regexp.MustCompile(`:3:CL:(\d+)`)

// Parse classifies an identifier into one of the two known shapes.
func Parse(id string) ParsedID {
	parsed := ParsedID{Kind: KindUnrecognized, Raw: id}
	parts := strings.Split(id, ":")

	if strings.Contains(id, credDefMarker) && len(parts) >= 5 && parts[1] == "3" && parts[2] == "CL" {
		parsed.Kind = KindCredDef
		parsed.DID = parts[0]
		parsed.SeqNo = parts[3]
		parsed.Tag = strings.Join(parts[4:], ":")
		parsed.SchemaName = parsed.Tag
		return parsed
	}

	if len(parts) >= 4 && parts[1] == "2" {
		parsed.Kind = KindSchema
		parsed.DID = parts[0]
		parsed.SchemaName = parts[2]
		parsed.SchemaVersion = parts[3]
		return parsed
	}

	return parsed
}

// CredDefSeqNo extracts the schema sequence number embedded in a credential
// definition ID. Returns "" when the marker or number is absent.
func CredDefSeqNo(id string) string {
	m := credDefSeqNoRe.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	return m[1]
}

// SchemaName returns the schema name encoded in a schema ID, or "".
func SchemaName(id string) string {
	p := Parse(id)
	if p.Kind != KindSchema {
		return ""
	}
	return p.SchemaName
}

// SchemaVersion returns the version encoded in a schema ID, or "".
func SchemaVersion(id string) string {
	p := Parse(id)
	if p.Kind != KindSchema {
		return ""
	}
	return p.SchemaVersion
}

// SchemaNameFromCredDef returns the schema name borrowed from a credential
// definition's tag, or "".
func SchemaNameFromCredDef(id string) string {
	p := Parse(id)
	if p.Kind != KindCredDef {
		return ""
	}
	return p.SchemaName
}

// explorerBases maps canonical ledger tokens to their transaction explorer.
// Only the CANdy family has a known explorer.
var explorerBases = map[string]string{
	"candy-prod": "https://candyscan.idlab.org",
	"candy-test": "https://candyscan.idlab.org",
	"candy-dev":  "https://candyscan.idlab.org",
}

// NetworkToken converts a canonical ledger token into the explorer's network
// path segment (candy-prod -> CANDY_PROD).
func NetworkToken(ledgerNormalized string) string {
	return strings.ToUpper(strings.ReplaceAll(ledgerNormalized, "-", "_"))
}

// ExplorerURL builds a ledger-explorer link for a credential definition ID.
// Schema IDs carry no sequence number, so they always yield "". Ledgers
// without a known explorer also yield "".
func ExplorerURL(id, ledgerNormalized string) string {
	base, ok := explorerBases[ledger.Normalize(ledgerNormalized)]
	if !ok {
		return ""
	}

	p := Parse(id)
	if p.Kind != KindCredDef {
		return ""
	}
	seqNo := CredDefSeqNo(id)
	if seqNo == "" {
		return ""
	}

	return base + "/tx/" + NetworkToken(ledger.Normalize(ledgerNormalized)) + "/domain/" + seqNo
}

// ExplorerURLBorrowing behaves like ExplorerURL but additionally links schema
// IDs by borrowing the sequence number of a sibling credential definition
// whose tag matches the schema name. Siblings is the full identifier set of
// the owning bundle record.
func ExplorerURLBorrowing(id, ledgerNormalized string, siblings []string) string {
	if url := ExplorerURL(id, ledgerNormalized); url != "" {
		return url
	}

	p := Parse(id)
	if p.Kind != KindSchema {
		return ""
	}

	base, ok := explorerBases[ledger.Normalize(ledgerNormalized)]
	if !ok {
		return ""
	}

	for _, sibling := range siblings {
		s := Parse(sibling)
		if s.Kind != KindCredDef || s.SchemaName != p.SchemaName {
			continue
		}
		if s.SeqNo == "" {
			continue
		}
		return base + "/tx/" + NetworkToken(ledger.Normalize(ledgerNormalized)) + "/domain/" + s.SeqNo
	}

	return ""
}
