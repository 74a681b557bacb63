package domain

import (
	"fmt"
	"reflect"
	"strings"
)

// Record is a canonical record as held in the caller's store. Keys are
// canonical field names; the record is keyed externally by the configured
// identifier field, never by a generated id.
type Record map[string]any

// Clone returns a shallow copy with slice values copied so that merge
// results never alias the caller's collection.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for key, value := range r {
		if items, ok := toStringSlice(value); ok {
			copied := make([]string, len(items))
			copy(copied, items)
			out[key] = copied
			continue
		}
		out[key] = value
	}
	return out
}

// Identifier returns the record's value for the given identifier field as a
// string, or "" when the field is absent or empty.
func (r Record) Identifier(field string) string {
	value, ok := r[field]
	if !ok || IsEmpty(value) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// IsEmpty reports whether a field value counts as unset: nil, a blank
// string, or an empty slice.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return rv.Len() == 0
	}
	return false
}

// Equal compares two field values. Numbers compare by value across numeric
// types, slices compare structurally element by element, everything else
// falls back to deep equality.
func Equal(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	if as, ok := toStringSlice(a); ok {
		bs, ok := toStringSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// ToStringSlice exposes the slice normalization used by Equal so that merge
// can build list unions over both []string and decoded []any values.
func ToStringSlice(value any) ([]string, bool) {
	return toStringSlice(value)
}
