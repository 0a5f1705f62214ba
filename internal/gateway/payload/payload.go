// Package payload reads loosely shaped upstream JSON through ordered lists of
// candidate paths.
package payload

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Path joins raw key components into a gjson path, escaping characters such
// as ':' and '@' that would otherwise be read as path syntax.
func Path(components ...string) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = gjson.Escape(c)
	}
	return strings.Join(parts, ".")
}

// Present returns the value at the first path that exists and is not null.
func Present(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// NonEmpty returns the value at the first path holding a truthy value: a
// non-empty string, a non-zero number, true, or an object/array.
func NonEmpty(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := doc.Get(p); truthy(v) {
			return v
		}
	}
	return gjson.Result{}
}

// String is NonEmpty restricted to string values.
func String(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// Float returns the first numeric value among paths.
func Float(doc gjson.Result, paths ...string) (float64, bool) {
	v := Present(doc, paths...)
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Num, true
}

// Array returns the elements of the first present array among paths.
func Array(doc gjson.Result, paths ...string) []gjson.Result {
	v := Present(doc, paths...)
	if !v.IsArray() {
		return nil
	}
	return v.Array()
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return true
	default:
		return false
	}
}
