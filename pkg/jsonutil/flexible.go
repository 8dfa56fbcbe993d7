package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleString converts a decoded JSON value to its display string, handling
// the schema-less records the backend returns where any field may be a string,
// number, boolean, null, or nested structure. Returns "NULL" for nil so that
// sample values stay distinguishable from empty strings.
func FlexibleString(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case bool:
		return fmt.Sprintf("%t", val)
	case float64:
		// encoding/json decodes every number to float64; keep integral values
		// free of a trailing ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case json.Number:
		return val.String()
	default:
		// Nested object or array: fall back to its JSON text.
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	}
}

// Truncate shortens s to at most max runes, marking the cut with "...".
// Values shorter than max are returned unchanged.
func Truncate(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
