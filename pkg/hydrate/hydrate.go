// Package hydrate resolves {{path.to.value}} placeholder markers in compiled
// workflow content against a nested key-value context. Purely functional:
// no I/O, input structures are never mutated, unresolved paths render as
// empty strings and are reported as warnings rather than errors.
package hydrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Marker syntax: {{path.to.value}} or {{path.to.value|formatter}}
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)\s*(?:\|\s*([A-Za-z]+)\s*)?\}\}`)

// Value hydrates an arbitrary JSON-shaped value (maps, slices, strings)
// and returns the hydrated copy plus the unresolved placeholder paths.
func Value(v interface{}, context map[string]interface{}) (interface{}, []string) {
	switch val := v.(type) {
	case string:
		return String(val, context)
	case map[string]interface{}:
		return Map(val, context)
	case []interface{}:
		out := make([]interface{}, len(val))
		var warnings []string
		for i, item := range val {
			hydrated, w := Value(item, context)
			out[i] = hydrated
			warnings = append(warnings, w...)
		}
		return out, warnings
	default:
		return v, nil
	}
}

// Map hydrates every value of a map, returning a new map.
func Map(m map[string]interface{}, context map[string]interface{}) (map[string]interface{}, []string) {
	out := make(map[string]interface{}, len(m))
	var warnings []string
	for k, v := range m {
		hydrated, w := Value(v, context)
		out[k] = hydrated
		warnings = append(warnings, w...)
	}
	return out, warnings
}

// String substitutes every placeholder marker in s. Hydrating a string with
// no markers returns it unchanged, which makes hydration idempotent.
func String(s string, context map[string]interface{}) (string, []string) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var warnings []string
	result := placeholderPattern.ReplaceAllStringFunc(s, func(marker string) string {
		groups := placeholderPattern.FindStringSubmatch(marker)
		path, formatter := groups[1], groups[2]

		value, ok := Resolve(path, context)
		if !ok || value == nil {
			warnings = append(warnings, path)
			return ""
		}
		return Format(value, formatter)
	})
	return result, warnings
}

// Resolve walks a dotted path through nested maps.
// Returns (nil, false) when any segment is missing.
func Resolve(path string, context map[string]interface{}) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = context
	for _, seg := range segments {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Format renders a resolved value using the optional named formatter.
// Unknown or empty formatter names fall back to plain rendering.
func Format(value interface{}, formatter string) string {
	switch formatter {
	case "currency":
		if f, ok := toFloat(value); ok {
			return "$" + groupThousands(f, 2)
		}
	case "percent":
		if f, ok := toFloat(value); ok {
			return trimZeros(strconv.FormatFloat(f, 'f', 2, 64)) + "%"
		}
	case "number":
		if f, ok := toFloat(value); ok {
			return groupThousands(f, 2)
		}
	case "date":
		if t, ok := toTime(value); ok {
			return t.Format("Jan 2, 2006")
		}
	}
	return plain(value)
}

func plain(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return trimZeros(strconv.FormatFloat(v, 'f', 2, 64))
	case float32:
		return trimZeros(strconv.FormatFloat(float64(v), 'f', 2, 64))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format("Jan 2, 2006")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// groupThousands renders f with comma separators and at most maxDecimals
// fraction digits, dropping a fraction that is all zeros ($185,000 not
// $185,000.00).
func groupThousands(f float64, maxDecimals int) string {
	s := strconv.FormatFloat(f, 'f', maxDecimals, 64)
	s = trimZeros(s)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
