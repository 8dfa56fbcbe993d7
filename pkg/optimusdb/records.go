// Package optimusdb talks to the OptimusDB command endpoint and normalizes
// its replies into flat record sets. Replies are untrusted: JSON may arrive
// string-wrapped several times over, the records container may be missing,
// and any field can hold any type. Everything here degrades to an empty,
// well-typed result instead of failing the caller.
package optimusdb

import (
	"sort"
	"strings"

	"github.com/georgeGeorgakakos/optimusddc/pkg/jsonutil"
)

// Record is one flat result row from the backend. Field names are
// backend-defined and differ across record types; values are whatever the
// JSON decoder produced.
type Record map[string]any

// RecordSet is an ordered collection of records. Order is whatever the
// backend returned, typically insertion order.
type RecordSet []Record

// String returns the string form of a field, or "" when the field is absent
// or null. Non-string values are rendered with their JSON display form.
func (r Record) String(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return s
	}
	return jsonutil.FlexibleString(v)
}

// FirstString walks the candidate field names in order and returns the first
// non-empty string value found. This is the lookup used everywhere the
// backend has no fixed field name for a concept (owners, tags, timestamps).
func (r Record) FirstString(names ...string) string {
	for _, name := range names {
		if s := strings.TrimSpace(r.String(name)); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the field as an int64 when it holds a JSON number, with ok
// reporting whether the conversion applied.
func (r Record) Int(name string) (int64, bool) {
	f, ok := r[name].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// FieldNames returns the record's field names sorted lexically. Go map
// iteration order is randomized, so sorting is what keeps column order and
// search documents stable across calls for the same record.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
