package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// EndsWith checks that a string value ends with a configured suffix.
// The fix appends the missing suffix.
type EndsWith struct {
	base
	Suffix string
}

func NewEndsWith(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	suffix := stringKwarg(kwargs, "end", "")
	if suffix == "" {
		return nil, fmt.Errorf("ends-with: end kwarg is required")
	}
	return &EndsWith{
		base:   base{id: "ends-with", onFail: onFail},
		Suffix: suffix,
	}, nil
}

func (v *EndsWith) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	s, ok := stringValue(value)
	if !ok {
		return models.FailResult(fmt.Sprintf("ends-with expects a string value, got %T", value))
	}
	if strings.HasSuffix(s, v.Suffix) {
		return models.PassResult()
	}
	return models.FailResult(
		fmt.Sprintf("value does not end with %q", v.Suffix),
	).WithFix(s + v.Suffix)
}
