package schema

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ParseCandidate turns raw model output into the value shape the plan
// validates. Flat string contracts pass through untouched; structured
// contracts are decoded as JSON. A decode failure is returned to the
// caller, which treats it as a retryable (non-parseable) failure
// rather than a fatal error.
func ParseCandidate(plan *Plan, raw string) (any, error) {
	switch plan.OutputType() {
	case "object", "list":
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("output is not parseable as %s: %w", plan.OutputType(), err)
		}
		return value, nil
	default:
		return raw, nil
	}
}
