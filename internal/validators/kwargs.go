package validators

import (
	"fmt"
	"strings"
)

// Kwargs arrive from YAML, JSON or XML attributes, so numbers may be
// int, int64, float64 or strings of digits. These coercions keep the
// constructors small.

func intKwarg(kwargs map[string]any, key string, fallback int) int {
	v, ok := kwargs[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(n, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatKwarg(kwargs map[string]any, key string, fallback float64) float64 {
	v, ok := kwargs[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(n, "%g", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}

func stringKwarg(kwargs map[string]any, key string, fallback string) string {
	if v, ok := kwargs[key].(string); ok {
		return v
	}
	return fallback
}

func stringsKwarg(kwargs map[string]any, key string) []string {
	switch v := kwargs[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		// XML attribute form: comma-separated values.
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

func stringValue(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}
