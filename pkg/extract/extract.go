// Package extract locates the best human-readable string for a named concept
// inside an arbitrarily shaped, already-decoded JSON structure. Overlay
// bundle authors place branding text in several competing locations and
// shapes; a fixed priority list of well-known paths is tried first, then a
// bounded deep scan of the whole structure.
package extract

import (
	"reflect"
	"sort"
	"strings"
)

// Path is one candidate field path, checked from the root.
type Path []string

// Value is the extraction result: either a plain string or a localization
// map. The zero Value means nothing usable was found.
type Value struct {
	Text      string
	Localized map[string]string
}

func (v Value) IsZero() bool {
	return v.Text == "" && len(v.Localized) == 0
}

// maxScanDepth bounds the fallback deep scan.
const maxScanDepth = 6

// WatermarkPaths is the priority list for watermark text.
var WatermarkPaths = []Path{
	{"branding", "watermarkText"},
	{"metadata", "watermark"},
	{"metadata", "watermark", "text"},
}

// Best returns the first usable value for concept: well-known paths in
// priority order, then a deep scan. Localization maps collapse to their
// first non-empty entry.
func Best(root any, concept string, paths []Path) Value {
	return best(root, concept, paths, false)
}

// BestLocalized behaves like Best but keeps the whole localization map so
// the caller can pick a language later.
func BestLocalized(root any, concept string, paths []Path) Value {
	return best(root, concept, paths, true)
}

// BestWatermark extracts watermark text for card rendering.
func BestWatermark(root any) Value {
	return Best(root, "watermark", WatermarkPaths)
}

// BestWatermarkLocalized extracts watermark text for branding forms, keeping
// per-language entries.
func BestWatermarkLocalized(root any) Value {
	return BestLocalized(root, "watermark", WatermarkPaths)
}

func best(root any, concept string, paths []Path, wholeMap bool) Value {
	for _, path := range paths {
		candidate, ok := lookupPath(root, path)
		if !ok {
			continue
		}
		if v, hit := shapeValue(candidate, wholeMap); hit {
			return v
		}
		// An explicitly blank candidate kills this path only; remaining
		// paths are still tried.
	}

	visited := map[uintptr]bool{}
	if v, hit := deepScan(root, strings.ToLower(concept), wholeMap, 0, visited); hit {
		return v
	}
	return Value{}
}

func lookupPath(root any, path Path) (any, bool) {
	current := root
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// shapeValue applies the value-shape rules to one candidate. The second
// return is true only for a usable hit; explicitly blank strings and empty
// collections report false.
func shapeValue(candidate any, wholeMap bool) (Value, bool) {
	switch v := candidate.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return Value{Text: s}, true
		}
		return Value{}, false

	case []string:
		if s := strings.TrimSpace(strings.Join(v, " ")); s != "" {
			return Value{Text: s}, true
		}
		return Value{}, false

	case []any:
		var parts []string
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return Value{}, false
			}
			parts = append(parts, s)
		}
		if s := strings.TrimSpace(strings.Join(parts, " ")); s != "" {
			return Value{Text: s}, true
		}
		return Value{}, false

	case map[string]string:
		converted := make(map[string]any, len(v))
		for k, s := range v {
			converted[k] = s
		}
		return shapeLocalized(converted, wholeMap)

	case map[string]any:
		return shapeLocalized(v, wholeMap)
	}

	return Value{}, false
}

// shapeLocalized treats a map candidate as a localization map. A "text"
// entry wins outright; a blank "text" entry marks the author's explicit
// choice to leave it empty, so other entries are not consulted.
func shapeLocalized(m map[string]any, wholeMap bool) (Value, bool) {
	if raw, ok := m["text"]; ok {
		if s, isStr := raw.(string); isStr {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return Value{Text: trimmed}, true
			}
			return Value{}, false
		}
	}

	entries := map[string]string{}
	for k, raw := range m {
		if s, isStr := raw.(string); isStr && strings.TrimSpace(s) != "" {
			entries[k] = strings.TrimSpace(s)
		}
	}
	if len(entries) == 0 {
		return Value{}, false
	}

	if wholeMap {
		return Value{Localized: entries}, true
	}

	// Maps carry no order; pick deterministically.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return Value{Text: entries[keys[0]]}, true
}

// deepScan walks the structure looking for any key whose name contains the
// concept, applying the same shape rules. Visited containers are tracked so
// self-referential input terminates.
func deepScan(node any, concept string, wholeMap bool, depth int, visited map[uintptr]bool) (Value, bool) {
	if depth > maxScanDepth {
		return Value{}, false
	}

	switch v := node.(type) {
	case map[string]any:
		id := reflect.ValueOf(v).Pointer()
		if visited[id] {
			return Value{}, false
		}
		visited[id] = true

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), concept) {
				if val, hit := shapeValue(v[k], wholeMap); hit {
					return val, true
				}
			}
		}
		for _, k := range keys {
			if val, hit := deepScan(v[k], concept, wholeMap, depth+1, visited); hit {
				return val, true
			}
		}

	case []any:
		id := reflect.ValueOf(v).Pointer()
		if visited[id] {
			return Value{}, false
		}
		visited[id] = true

		for _, item := range v {
			if val, hit := deepScan(item, concept, wholeMap, depth+1, visited); hit {
				return val, true
			}
		}
	}

	return Value{}, false
}
