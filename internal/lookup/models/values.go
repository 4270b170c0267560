package models

import (
	"encoding/json"
	"strconv"
)

// Stringify renders a decoded JSON scalar as text. Objects, arrays and
// nulls are reported as absent.
func Stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// StringOr returns m[key] as text or def when absent or empty.
func StringOr(m map[string]any, key, def string) string {
	if s, ok := Stringify(m[key]); ok && s != "" {
		return s
	}
	return def
}

// ValueOr returns m[key] as text, or def when absent. Numbers keep their
// JSON spelling so "12.50" is not reformatted.
func ValueOr(m map[string]any, key string, def any) any {
	if s, ok := Stringify(m[key]); ok && s != "" {
		return s
	}
	return def
}

// IntOr returns m[key] as an integer or def.
func IntOr(m map[string]any, key string, def int64) int64 {
	switch t := m[key].(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return def
}
