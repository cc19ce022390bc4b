package jsonpath

import (
	"regexp"
	"strconv"
	"strings"
)

// Root is the path that selects the whole value.
const Root = "$"

var indexedSegment = regexp.MustCompile(`^(.+?)\[(\d+)\]$`)

// Evaluate walks root along path and returns the addressed value.
//
// An empty path or "$" returns root unchanged, even when root is Null. For
// any other path the first unresolved step makes the result Null and the
// remaining segments are not visited.
func Evaluate(root Value, path string) Value {
	if path == "" || path == Root {
		return root
	}

	current := root
	for _, segment := range Segments(path) {
		if name, key, ok := splitIndexed(segment); ok {
			current = current.Field(name)
			if current.IsNull() || key == "" {
				return Null()
			}
			current = current.Field(key)
		} else {
			current = current.Field(segment)
		}

		if current.IsNull() {
			return Null()
		}
	}

	return current
}

// Segments strips the leading "$" (and one following ".") from path and
// returns its non-empty dot separated segments.
func Segments(path string) []string {
	if strings.HasPrefix(path, Root) {
		path = strings.TrimPrefix(path[len(Root):], ".")
	}

	parts := strings.Split(path, ".")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// IsRoot reports whether path selects the whole value.
func IsRoot(path string) bool {
	return path == "" || path == Root
}

// splitIndexed splits "name[n]" into name and the canonical decimal form of
// n, which indexes arrays and names object members alike. key is empty when
// n does not fit an int.
func splitIndexed(segment string) (name, key string, ok bool) {
	matches := indexedSegment.FindStringSubmatch(segment)
	if matches == nil {
		return "", "", false
	}
	index, err := strconv.Atoi(matches[2])
	if err != nil {
		return matches[1], "", true
	}
	return matches[1], strconv.Itoa(index), true
}
