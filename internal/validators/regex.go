package validators

import (
	"context"
	"fmt"
	"regexp"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// RegexMatch checks that a string value matches a pattern. The pattern
// is compiled once at construction; a bad pattern fails compilation of
// the whole plan rather than every attempt.
type RegexMatch struct {
	base
	pattern *regexp.Regexp
}

func NewRegexMatch(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
	raw := stringKwarg(kwargs, "pattern", "")
	if raw == "" {
		return nil, fmt.Errorf("regex-match: pattern kwarg is required")
	}
	re, err := regexp.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("regex-match: invalid pattern %q: %w", raw, err)
	}
	return &RegexMatch{
		base:    base{id: "regex-match", onFail: onFail},
		pattern: re,
	}, nil
}

func (v *RegexMatch) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	s, ok := stringValue(value)
	if !ok {
		return models.FailResult(fmt.Sprintf("regex-match expects a string value, got %T", value))
	}
	if !v.pattern.MatchString(s) {
		return models.FailResult(
			fmt.Sprintf("value does not match pattern %s", v.pattern.String()),
		).WithSpans(models.ErrorSpan{Start: 0, End: len(s), Message: "no match"})
	}
	return models.PassResult()
}
