package execution

import (
	"context"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
)

// Report is the merged result of validating one candidate value
// against a plan and reducing every failure through the resolver.
type Report struct {
	// Logs holds every validator outcome in binding order.
	Logs []models.ValidatorLog
	// Value is the candidate after replacements (fixes, refrains,
	// nested filters) have been applied.
	Value any
	// HasOutput reports whether Value should be surfaced at all.
	// Output is present when validation passed or a substitute was
	// produced; an abort or a root-level filter always drops it.
	HasOutput bool
	// Passed is true when nothing failed, or every failure was fixed.
	Passed bool
	// AbortErr carries the first exception-policy failure, if any.
	AbortErr error
	// Feedbacks holds the corrective messages of every retry-resolving
	// failure.
	Feedbacks []string
}

// ErrorSpans gathers the spans of all failed validators, for the
// outcome surface.
func (r *Report) ErrorSpans() []models.ErrorSpan {
	var spans []models.ErrorSpan
	for _, log := range r.Logs {
		if !log.Result.Passed {
			spans = append(spans, log.Result.ErrorSpans...)
		}
	}
	return spans
}

// Apply runs the plan's validators over a candidate value with the
// given strategy and resolves every failure. Validators at one path
// all see the value as it stood when the path was visited; the
// resolver is invoked for every failure even after an abort, so the
// report reflects the complete failure state of the attempt.
func Apply(ctx context.Context, plan *schema.Plan, strategy Strategy, value any, metadata map[string]any) Report {
	report := Report{
		Value:  value,
		Passed: true,
	}
	var aborted, rootFiltered, substituted bool

	for _, path := range plan.Paths() {
		vs := plan.ValidatorsAt(path)
		target, _ := schema.LookupPath(report.Value, path)
		results := strategy.Validate(ctx, target, vs, metadata)

		for i, result := range results {
			v := vs[i]
			report.Logs = append(report.Logs, models.ValidatorLog{
				Validator: v.ID(),
				Path:      path,
				OnFail:    v.OnFail(),
				Result:    result,
			})

			if result.Passed {
				continue
			}

			resolution := Resolve(ctx, target, v, result)
			switch resolution.Kind {
			case ResolutionAbort:
				report.Passed = false
				aborted = true
				if report.AbortErr == nil {
					report.AbortErr = resolution.Err
				}

			case ResolutionReplace:
				switch v.OnFail() {
				case models.OnFailFilter:
					report.Passed = false
					if path == schema.RootPath {
						rootFiltered = true
						report.Value = nil
					} else {
						substituted = true
						report.Value = schema.SetPath(report.Value, path, nil)
					}
				case models.OnFailRefrain:
					report.Passed = false
					substituted = true
					report.Value = schema.SetPath(report.Value, path, resolution.Value)
				default:
					// fix, fix_reask (local fix held), custom: the
					// remediated value counts as passing.
					substituted = true
					report.Value = schema.SetPath(report.Value, path, resolution.Value)
				}

			case ResolutionKeepGoing:
				// noop: observe but do not block the pipeline; the
				// failure still marks the outcome.
				report.Passed = false

			case ResolutionRetry:
				report.Passed = false
				report.Feedbacks = append(report.Feedbacks, resolution.Feedback)
			}
		}
	}

	// Presence is decided once, over the whole attempt: a substitute
	// produced by one validator survives later noop or reask failures.
	report.HasOutput = !aborted && !rootFiltered && (report.Passed || substituted)

	return report
}
