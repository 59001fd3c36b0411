package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// LowerCase checks that a string value is entirely lower case. The fix
// is the lower-cased value.
type LowerCase struct {
	base
}

func NewLowerCase(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	return &LowerCase{base: base{id: "lower-case", onFail: onFail}}, nil
}

func (v *LowerCase) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	s, ok := stringValue(value)
	if !ok {
		return models.FailResult(fmt.Sprintf("lower-case expects a string value, got %T", value))
	}
	lowered := strings.ToLower(s)
	if s != lowered {
		return models.FailResult("value is not lower case").WithFix(lowered)
	}
	return models.PassResult()
}
