package normalize

import (
	"fmt"
	"time"
)

// RawRecord is a loosely-typed job record as handed over by a source store,
// typically the result of decoding a JSON document. Field names and value
// types differ per source; only this package may interpret them.
type RawRecord map[string]any

// str returns the first present key coerced to a string.
func (r RawRecord) str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case fmt.Stringer:
			return t.String()
		case float64:
			return fmt.Sprintf("%g", t)
		}
	}
	return ""
}

// boolOr returns the key as a bool, or fallback when absent or mistyped.
func (r RawRecord) boolOr(key string, fallback bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return fallback
}

// timeVal returns the key parsed as a timestamp. Accepts time.Time values and
// RFC 3339 strings; anything else yields the zero time.
func (r RawRecord) timeVal(key string) time.Time {
	switch t := r[key].(type) {
	case time.Time:
		return t
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// coord returns an optional coordinate value.
func (r RawRecord) coord(key string) *float64 {
	if v, ok := r[key].(float64); ok {
		return &v
	}
	return nil
}
