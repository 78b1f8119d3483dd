package ledger

import "strings"

// Unknown is the canonical token returned for absent ledger values.
const Unknown = "unknown"

// vocabulary is the source of truth for ledger normalization. It groups the
// raw spellings seen in bundle READMEs under one canonical token per ledger
// instance. Matching is case-insensitive on the raw side.
var vocabulary = map[string][]string{
	"candy-prod": {"candy-prod", "candy prod", "candy:prod", "candy production", "candy prod ledger", "candyscan prod"},
	"candy-test": {"candy-test", "candy test", "candy:test", "candy test ledger"},
	"candy-dev":  {"candy-dev", "candy dev", "candy:dev", "candy dev ledger", "candy development"},

	"bcovrin-prod": {"bcovrin-prod", "bcovrin prod", "bcovrin", "bcovrin production"},
	"bcovrin-test": {"bcovrin-test", "bcovrin test", "bcovrin testnet"},
	"bcovrin-dev":  {"bcovrin-dev", "bcovrin dev"},

	"sovrin-main":    {"sovrin-main", "sovrin main", "sovrin mainnet", "sovrin"},
	"sovrin-staging": {"sovrin-staging", "sovrin staging", "sovrin stagingnet"},
	"sovrin-builder": {"sovrin-builder", "sovrin builder", "sovrin buildernet"},
}

// rawMap is a reverse map generated from vocabulary for efficient lookups.
var rawMap map[string]string

func init() {
	rawMap = make(map[string]string)
	for canonical, raws := range vocabulary {
		for _, raw := range raws {
			rawMap[strings.ToLower(raw)] = canonical
		}
	}
}

// Normalize maps a raw ledger label to its canonical token. Unmapped input
// is slugified so the result is always a stable grouping key. The function
// is idempotent: canonical tokens normalize to themselves.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Unknown
	}

	if canonical, ok := rawMap[strings.ToLower(trimmed)]; ok {
		return canonical
	}

	if slug := slugify(trimmed); slug != "" {
		return slug
	}
	return Unknown
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// displayNames maps canonical tokens to curated human labels.
var displayNames = map[string]string{
	"candy-prod": "CANdy Production",
	"candy-test": "CANdy Test",
	"candy-dev":  "CANdy Development",

	"bcovrin-prod": "BCovrin Production",
	"bcovrin-test": "BCovrin Test",
	"bcovrin-dev":  "BCovrin Development",

	"sovrin-main":    "Sovrin MainNet",
	"sovrin-staging": "Sovrin StagingNet",
	"sovrin-builder": "Sovrin BuilderNet",

	Unknown: "Unknown Ledger",
}

// DisplayName returns a human label for a canonical (or raw) ledger token.
// Unmapped tokens are title-cased per segment.
func DisplayName(token string) string {
	if token == "" {
		return displayNames[Unknown]
	}
	if label, ok := displayNames[token]; ok {
		return label
	}

	segments := strings.FieldsFunc(token, func(r rune) bool {
		return r == '-' || r == '_' || r == ':'
	})
	for i, seg := range segments {
		segments[i] = strings.ToUpper(seg[:1]) + strings.ToLower(seg[1:])
	}
	return strings.Join(segments, " ")
}

// NormalizeNetwork maps a raw network enum token (e.g. CANDY_PROD) to the
// canonical ledger token used across the catalog (candy-prod).
func NormalizeNetwork(network string) string {
	return Normalize(strings.ReplaceAll(strings.ToLower(network), "_", "-"))
}
