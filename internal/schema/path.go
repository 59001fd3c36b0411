package schema

import "strings"

// LookupPath resolves a dotted JSON path against a candidate value.
// The root path returns the value itself; nested segments navigate
// map[string]any structures.
func LookupPath(value any, path string) (any, bool) {
	if path == RootPath {
		return value, true
	}
	if !strings.HasPrefix(path, RootPath+".") {
		return nil, false
	}

	current := value
	for _, segment := range strings.Split(strings.TrimPrefix(path, RootPath+"."), ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetPath replaces the value at a dotted JSON path and returns the
// (possibly new) root. Replacing the root path swaps the whole value;
// a nil replacement at a nested path removes the field, which is how
// the filter action drops a single field of a structured output.
func SetPath(value any, path string, replacement any) any {
	if path == RootPath {
		return replacement
	}
	if !strings.HasPrefix(path, RootPath+".") {
		return value
	}

	segments := strings.Split(strings.TrimPrefix(path, RootPath+"."), ".")
	current, ok := value.(map[string]any)
	if !ok {
		return value
	}

	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			return value
		}
		current = next
	}

	last := segments[len(segments)-1]
	if replacement == nil {
		delete(current, last)
	} else {
		current[last] = replacement
	}
	return value
}
