package validators

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// ValidLength checks that a string value's length falls within
// [min, max]. Over-long values carry a truncation fix; under-length
// values have no mechanical fix and rely on the on-fail policy.
type ValidLength struct {
	base
	Min int
	Max int
}

func NewValidLength(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	v := &ValidLength{
		base: base{id: "valid-length", onFail: onFail},
		Min:  intKwarg(kwargs, "min", 0),
		Max:  intKwarg(kwargs, "max", 0),
	}
	if v.Max > 0 && v.Min > v.Max {
		return nil, fmt.Errorf("valid-length: min %d exceeds max %d", v.Min, v.Max)
	}
	return v, nil
}

func (v *ValidLength) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	s, ok := stringValue(value)
	if !ok {
		return models.FailResult(fmt.Sprintf("valid-length expects a string value, got %T", value))
	}

	n := len(s)
	if v.Min > 0 && n < v.Min {
		return models.FailResult(
			fmt.Sprintf("value has length %d, expected at least %d", n, v.Min),
		).WithSpans(models.ErrorSpan{
			Start:   0,
			End:     n,
			Message: fmt.Sprintf("too short by %d characters", v.Min-n),
		})
	}
	if v.Max > 0 && n > v.Max {
		return models.FailResult(
			fmt.Sprintf("value has length %d, expected at most %d", n, v.Max),
		).WithFix(s[:v.Max]).WithSpans(models.ErrorSpan{
			Start:    v.Max,
			End:      n,
			Message:  "excess characters",
			FixValue: "",
		})
	}

	return models.PassResult()
}
