package execution

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
)

// ResolutionKind names the next step after a validation failure.
type ResolutionKind string

const (
	ResolutionAbort     ResolutionKind = "abort"
	ResolutionReplace   ResolutionKind = "replace"
	ResolutionKeepGoing ResolutionKind = "keep_going"
	ResolutionRetry     ResolutionKind = "request_retry"
)

// Resolution is the resolver's decision for one failure. Exactly one
// of Err (abort), Value (replace / keep going) or Feedback (retry) is
// meaningful, selected by Kind. Replaced reports whether Value differs
// from the input; a replaced nil value means "drop this output".
type Resolution struct {
	Kind     ResolutionKind
	Value    any
	Replaced bool
	Err      error
	Feedback string
}

// AbortError surfaces a failure whose on-fail policy is exception.
// Callers must propagate it, never swallow it.
type AbortError struct {
	Validator string
	Fail      models.ValidationResult
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Validator, e.Fail.ErrorMessage)
}

// Resolve maps one failure through its validator's declared on-fail
// action. It is total over the closed OnFailAction enum: every call
// returns exactly one resolution, and it must run for every failure
// before an invocation is considered terminal.
func Resolve(ctx context.Context, value any, v validators.Validator, fail models.ValidationResult) Resolution {
	switch v.OnFail() {
	case models.OnFailException:
		return Resolution{
			Kind: ResolutionAbort,
			Err:  &AbortError{Validator: v.ID(), Fail: fail},
		}

	case models.OnFailFilter:
		// The value becomes "no value": drop this output.
		return Resolution{Kind: ResolutionReplace, Value: nil, Replaced: true}

	case models.OnFailRefrain:
		return Resolution{Kind: ResolutionReplace, Value: emptyLike(value), Replaced: true}

	case models.OnFailNoop:
		return Resolution{Kind: ResolutionKeepGoing, Value: value}

	case models.OnFailFix:
		if !fail.HasFix {
			// A fix action with no fix value is a contract violation,
			// not a silent pass.
			return Resolution{
				Kind: ResolutionAbort,
				Err: &AbortError{Validator: v.ID(), Fail: models.FailResult(
					fmt.Sprintf("on-fail is fix but %s produced no fix value: %s", v.ID(), fail.ErrorMessage),
				)},
			}
		}
		return Resolution{Kind: ResolutionReplace, Value: fail.FixValue, Replaced: true}

	case models.OnFailReask:
		return Resolution{
			Kind:     ResolutionRetry,
			Feedback: Introspect(fail),
		}

	case models.OnFailFixReask:
		if !fail.HasFix {
			return Resolution{
				Kind:     ResolutionRetry,
				Feedback: Introspect(fail),
			}
		}
		// Apply the fix, then re-validate locally before deciding.
		recheck := v.Validate(ctx, fail.FixValue, nil)
		if recheck.Passed {
			return Resolution{Kind: ResolutionReplace, Value: fail.FixValue, Replaced: true}
		}
		return Resolution{
			Kind:     ResolutionRetry,
			Feedback: Introspect(recheck),
		}

	case models.OnFailCustom:
		fixer, ok := v.(validators.CustomFixer)
		if !ok || fixer.OnFailHandler() == nil {
			return Resolution{
				Kind: ResolutionAbort,
				Err: &AbortError{Validator: v.ID(), Fail: models.FailResult(
					fmt.Sprintf("on-fail is custom but %s has no handler", v.ID()),
				)},
			}
		}
		return Resolution{
			Kind:     ResolutionReplace,
			Value:    fixer.OnFailHandler()(value, fail),
			Replaced: true,
		}
	}

	// Unreachable for the closed enum; still resolve rather than panic.
	return Resolution{
		Kind: ResolutionAbort,
		Err: &AbortError{Validator: v.ID(), Fail: models.FailResult(
			fmt.Sprintf("unrecognized on-fail action %q", v.OnFail()),
		)},
	}
}

// emptyLike returns the empty value of the same conceptual type as v.
func emptyLike(v any) any {
	switch v.(type) {
	case string:
		return ""
	case map[string]any:
		return map[string]any{}
	case []any:
		return []any{}
	case float64:
		return float64(0)
	case int:
		return 0
	case bool:
		return false
	default:
		return ""
	}
}
