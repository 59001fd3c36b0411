package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// ValidChoices checks that a value is one of a closed set of allowed
// choices. There is no mechanical fix; the on-fail policy decides.
type ValidChoices struct {
	base
	Choices []string
}

func NewValidChoices(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	choices := stringsKwarg(kwargs, "choices")
	if len(choices) == 0 {
		return nil, fmt.Errorf("valid-choices: choices kwarg is required")
	}
	return &ValidChoices{
		base:    base{id: "valid-choices", onFail: onFail},
		Choices: choices,
	}, nil
}

func (v *ValidChoices) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	got := fmt.Sprint(value)
	for _, choice := range v.Choices {
		if got == choice {
			return models.PassResult()
		}
	}
	return models.FailResult(
		fmt.Sprintf("value %q is not one of: %s", got, strings.Join(v.Choices, ", ")),
	)
}
