// Package resolve queries decoded JSON documents with dotted paths and
// implements the preferred-language/fallback field resolution used across
// the feed pipeline.
//
// Upstream records localize fields as maps keyed by language code with
// inconsistent completeness, while other fields are plain scalars. The
// resolver treats "field missing", "language missing" and "value blank"
// uniformly: try the preferred path, then the fallback path, then give up.
package resolve

import (
	"sort"
	"strconv"
	"strings"
)

// RawRecord is one upstream JSON document as decoded by encoding/json:
// map[string]any, []any and scalar leaves. Records are never mutated.
type RawRecord = any

// Path is a parsed dotted path expression. Segments are object keys,
// decimal array indexes, or the wildcard "*" which selects the first
// child (map keys in sorted order) for which the rest of the path
// yields a usable value.
type Path []string

// ParsePath splits a dotted expression such as "name.fi" or
// "images.*.url" into a Path.
func ParsePath(expr string) Path {
	return Path(strings.Split(expr, "."))
}

// Query walks rec along p. The boolean reports whether a non-nil value
// was found.
func Query(rec RawRecord, p Path) (any, bool) {
	if len(p) == 0 {
		return rec, rec != nil
	}
	seg, rest := p[0], p[1:]

	switch v := rec.(type) {
	case map[string]any:
		if seg == "*" {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if out, ok := Query(v[k], rest); ok {
					return out, true
				}
			}
			return nil, false
		}
		child, ok := v[seg]
		if !ok {
			return nil, false
		}
		return Query(child, rest)

	case []any:
		if seg == "*" {
			for _, el := range v {
				if out, ok := Query(el, rest); ok {
					return out, true
				}
			}
			return nil, false
		}
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return Query(v[i], rest)

	default:
		// Scalar with path segments left over.
		return nil, false
	}
}

// String queries rec along p and renders the leaf as a trimmed string.
// Numeric and boolean leaves use their JSON literal form. Blank strings
// and non-scalar leaves report false.
func String(rec RawRecord, p Path) (string, bool) {
	out, ok := Query(rec, p)
	if !ok {
		return "", false
	}
	var s string
	switch v := out.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Resolve tries preferred, then fallback. Missing paths, wrong-typed
// leaves and blank values all fall through; failure of both paths
// reports ("", false) and never an error.
func Resolve(rec RawRecord, preferred, fallback Path) (string, bool) {
	if s, ok := String(rec, preferred); ok {
		return s, true
	}
	return String(rec, fallback)
}

// ResolveLocalized resolves field.<lang> with field.* as the fallback,
// the shape every localized upstream field shares.
func ResolveLocalized(rec RawRecord, field, lang string) (string, bool) {
	return Resolve(rec, ParsePath(field+"."+lang), ParsePath(field+".*"))
}

// ResolvePlain resolves a non-localized field.
func ResolvePlain(rec RawRecord, field string) (string, bool) {
	p := ParsePath(field)
	return String(rec, p)
}
