package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// TwoWords checks that a string value contains exactly two words. The
// fix keeps the first two.
type TwoWords struct {
	base
}

func NewTwoWords(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	return &TwoWords{base: base{id: "two-words", onFail: onFail}}, nil
}

func (v *TwoWords) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	s, ok := stringValue(value)
	if !ok {
		return models.FailResult(fmt.Sprintf("two-words expects a string value, got %T", value))
	}
	words := strings.Fields(s)
	if len(words) == 2 {
		return models.PassResult()
	}
	fail := models.FailResult(fmt.Sprintf("value has %d words, expected exactly 2", len(words)))
	if len(words) > 2 {
		fail = fail.WithFix(strings.Join(words[:2], " "))
	}
	return fail
}
