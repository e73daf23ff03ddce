package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Compare orders two document values. Values compare numerically when
// either side is a number and the other side parses as one; query
// parameters always arrive as strings, so "1000" against a stored
// 1200.0 must still compare as numbers. Everything else falls back to
// lexicographic comparison of the printed forms.
func Compare(a, b any) int {
	if fa, ok := asNumber(a); ok {
		if fb, ok := coerceNumber(b); ok {
			return compareFloats(fa, fb)
		}
	} else if fb, ok := asNumber(b); ok {
		if fa, ok := coerceNumber(a); ok {
			return compareFloats(fa, fb)
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func looseEqual(a, b any) bool {
	if isComposite(a) || isComposite(b) {
		return reflect.DeepEqual(a, b)
	}
	return Compare(a, b) == 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// asNumber converts genuine numeric types only.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// coerceNumber additionally parses numeric strings.
func coerceNumber(v any) (float64, bool) {
	if f, ok := asNumber(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
