package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/execution"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/history"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
	"github.com/rs/zerolog"
)

// Options configures the retry loop.
type Options struct {
	// NumReasks bounds regeneration: the model caller runs at most
	// NumReasks+1 times.
	NumReasks int
	// BaseDelay is the backoff unit; the sleep before re-ask k is
	// BaseDelay * 2^k, capped at MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Metadata is passed to every validator invocation.
	Metadata map[string]any
}

func (o Options) withDefaults() Options {
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	return o
}

// Runner drives the bounded generate-validate-reask loop:
// Generating -> Validating -> Done, or back through Backoff while a
// failure resolves to a re-ask and attempts remain. Iterations are
// strictly sequential; the only suspension points are the model call
// and the backoff sleep, both cancellable by the caller's deadline.
type Runner struct {
	plan     *schema.Plan
	strategy execution.Strategy
	caller   ModelCaller
	recorder *history.Recorder
	opts     Options
	logger   *zerolog.Logger
}

func New(
	plan *schema.Plan,
	strategy execution.Strategy,
	caller ModelCaller,
	recorder *history.Recorder,
	opts Options,
	logger *zerolog.Logger,
) *Runner {
	return &Runner{
		plan:     plan,
		strategy: strategy,
		caller:   caller,
		recorder: recorder,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Run executes the full loop for one prompt. The outcome is always
// populated; the error is non-nil only for exception-policy aborts,
// timeouts and retry exhaustion, which callers must be prepared to
// handle as propagated failures.
func (r *Runner) Run(ctx context.Context, prompt string) (models.ValidationOutcome, error) {
	call := r.recorder.StartCall(models.CallInputs{Prompt: prompt, Metadata: r.opts.Metadata})

	feedback := ""
	for attempt := 0; ; attempt++ {
		started := time.Now()

		raw, err := r.caller.Call(ctx, prompt, feedback)
		if err != nil {
			outcome := failedOutcome(raw, fmt.Sprintf("generation failed: %v", err))
			r.recorder.Finalize(call, outcome)
			if ctx.Err() != nil {
				return outcome, fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			return outcome, fmt.Errorf("model caller failed: %w", err)
		}

		report := r.validateAttempt(ctx, raw)

		r.recorder.RecordIteration(call, models.Iteration{
			Number:    attempt + 1,
			Output:    raw,
			Results:   report.Logs,
			Feedback:  feedback,
			StartedAt: started,
			Duration:  time.Since(started),
		})

		if report.AbortErr != nil {
			outcome := failedOutcome(raw, report.AbortErr.Error())
			outcome.ErrorSpans = report.ErrorSpans()
			outcome.Metadata["validation_results"] = report.Logs
			r.recorder.Finalize(call, outcome)
			return outcome, report.AbortErr
		}

		if len(report.Feedbacks) == 0 {
			outcome := buildOutcome(report, raw)
			r.recorder.Finalize(call, outcome)
			r.logger.Info().
				Str("call_id", call.ID).
				Int("attempts", attempt+1).
				Bool("passed", outcome.ValidationPassed).
				Msg("run complete")
			return outcome, nil
		}

		if attempt >= r.opts.NumReasks {
			lastFeedback := execution.BuildFeedback(report.Logs)
			outcome := failedOutcome(raw, lastFeedback)
			outcome.ErrorSpans = report.ErrorSpans()
			outcome.Metadata["validation_results"] = report.Logs
			r.recorder.Finalize(call, outcome)
			return outcome, &RetryExhaustedError{Attempts: attempt + 1, Feedback: lastFeedback}
		}

		feedback = execution.BuildFeedback(report.Logs)
		delay := Backoff(attempt, r.opts.BaseDelay, r.opts.MaxDelay)

		r.logger.Info().
			Str("call_id", call.ID).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("validation requested re-ask")

		select {
		case <-ctx.Done():
			outcome := failedOutcome(raw, "deadline exceeded during backoff")
			r.recorder.Finalize(call, outcome)
			return outcome, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-time.After(delay):
		}
	}
}

// validateAttempt parses the raw output per the plan's contract and
// applies the validators. A non-parseable structured output is a
// retryable failure with the parse error as feedback, not a fatal
// error.
func (r *Runner) validateAttempt(ctx context.Context, raw string) execution.Report {
	value, err := schema.ParseCandidate(r.plan, raw)
	if err != nil {
		fail := models.FailResult(err.Error())
		return execution.Report{
			Logs: []models.ValidatorLog{{
				Validator: "output-parser",
				Path:      schema.RootPath,
				OnFail:    models.OnFailReask,
				Result:    fail,
			}},
			Feedbacks: []string{err.Error()},
		}
	}
	return execution.Apply(ctx, r.plan, r.strategy, value, r.opts.Metadata)
}

// Backoff returns the sleep before re-ask attempt+1. It is
// deterministic and non-decreasing in attempt, so repeated failures
// never wait less than the previous round.
func Backoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func buildOutcome(report execution.Report, raw string) models.ValidationOutcome {
	outcome := models.ValidationOutcome{
		RawOutput:        raw,
		ValidationPassed: report.Passed,
		ErrorSpans:       report.ErrorSpans(),
		Metadata: map[string]any{
			"validation_results": report.Logs,
		},
	}
	if report.HasOutput {
		outcome.ValidatedOutput = report.Value
	}
	return outcome
}

func failedOutcome(raw string, reason string) models.ValidationOutcome {
	return models.ValidationOutcome{
		RawOutput:        raw,
		ValidationPassed: false,
		Metadata: map[string]any{
			"failure_reason": reason,
		},
	}
}
