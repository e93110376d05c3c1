// Package mapping applies the declarative field-mapping configuration to a
// semantic extraction result, producing the flat target record.
package mapping

import (
	"strconv"
	"strings"
)

// absent is the explicit "no value at this path" sentinel, distinct from an
// empty string or a literal nil stored in the tree.
type absentType struct{}

// Absent marks a failed path resolution.
var Absent = absentType{}

// IsAbsent reports whether v is the absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absentType)
	return ok
}

// isBlank treats Absent, nil and empty/whitespace strings as blank; blank
// values do not stop a source fallback chain.
func isBlank(v any) bool {
	if IsAbsent(v) || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Resolve walks a dotted path ("cargo.dimensions.length_m", "items.0.name")
// through a tree of maps and slices. Returns Absent when any segment is
// missing or of the wrong shape.
func Resolve(tree any, path string) any {
	if path == "" {
		return Absent
	}
	node := tree
	for _, seg := range strings.Split(path, ".") {
		switch t := node.(type) {
		case map[string]any:
			v, ok := t[seg]
			if !ok {
				return Absent
			}
			node = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(t) {
				return Absent
			}
			node = t[idx]
		default:
			return Absent
		}
	}
	return node
}
