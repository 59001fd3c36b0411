package guard

import (
	"context"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/execution"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/history"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
	"github.com/rs/zerolog"
)

// Guard owns a compiled validation plan and its call history, and
// exposes the two entry points: Validate (single pass, no generation)
// and Run (full generate-validate-retry loop). The plan and its
// validator instances are read-only after compilation and safe to
// share; each invocation owns an independent call record.
type Guard struct {
	plan     *schema.Plan
	strategy execution.Strategy
	recorder *history.Recorder
	opts     runner.Options
	onReask  runner.StreamOnReask
	logger   *zerolog.Logger
}

// Option tunes a Guard at construction.
type Option func(*Guard)

// WithStrategy selects the validator execution strategy. The default
// is concurrent fan-out; sequential is available for validators with
// ordering-sensitive side effects.
func WithStrategy(s execution.Strategy) Option {
	return func(g *Guard) { g.strategy = s }
}

// WithRunnerOptions configures the retry loop (re-ask budget, backoff).
func WithRunnerOptions(opts runner.Options) Option {
	return func(g *Guard) { g.opts = opts }
}

// WithStreamOnReask selects how reask degrades while streaming.
func WithStreamOnReask(mode runner.StreamOnReask) Option {
	return func(g *Guard) { g.onReask = mode }
}

// WithCallSink persists every finalized call to a durable sink, in
// addition to the in-memory history.
func WithCallSink(sink history.Sink) Option {
	return func(g *Guard) { g.recorder.SetSink(sink) }
}

func New(plan *schema.Plan, logger *zerolog.Logger, options ...Option) *Guard {
	g := &Guard{
		plan:     plan,
		strategy: execution.Concurrent{},
		recorder: history.NewRecorder(),
		onReask:  runner.StreamReaskException,
		logger:   logger,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Validate runs the plan over a candidate in a single pass, applying
// resolver semantics to the returned value: fixes substitute, filters
// drop, refrains blank. An exception-policy failure propagates as an
// error; every other failure is data on the outcome. A reask
// resolution has no generator to return to here, so it surfaces as a
// failed outcome with the synthesized feedback in metadata.
func (g *Guard) Validate(ctx context.Context, candidate string) (models.ValidationOutcome, error) {
	call := g.recorder.StartCall(models.CallInputs{Candidate: candidate})

	value, err := schema.ParseCandidate(g.plan, candidate)
	if err != nil {
		outcome := models.ValidationOutcome{
			RawOutput:        candidate,
			ValidationPassed: false,
			Metadata:         map[string]any{"failure_reason": err.Error()},
		}
		g.recorder.Finalize(call, outcome)
		return outcome, nil
	}

	report := execution.Apply(ctx, g.plan, g.strategy, value, g.opts.Metadata)

	outcome := models.ValidationOutcome{
		RawOutput:        candidate,
		ValidationPassed: report.Passed,
		ErrorSpans:       report.ErrorSpans(),
		Metadata: map[string]any{
			"validation_results": report.Logs,
		},
	}
	if report.HasOutput {
		outcome.ValidatedOutput = report.Value
	}
	if len(report.Feedbacks) > 0 {
		outcome.Metadata["reask_feedback"] = execution.BuildFeedback(report.Logs)
	}

	g.recorder.Finalize(call, outcome)

	if report.AbortErr != nil {
		return outcome, report.AbortErr
	}
	return outcome, nil
}

// Run drives the full loop against a model caller.
func (g *Guard) Run(ctx context.Context, caller runner.ModelCaller, prompt string) (models.ValidationOutcome, error) {
	r := runner.New(g.plan, g.strategy, caller, g.recorder, g.opts, g.logger)
	return r.Run(ctx, prompt)
}

// RunStream validates a streamed generation sentence by sentence.
func (g *Guard) RunStream(ctx context.Context, caller runner.StreamCaller, prompt string) (models.ValidationOutcome, error) {
	r := runner.NewStreamRunner(g.plan, g.strategy, caller, g.recorder, g.onReask, g.opts.Metadata, g.logger)
	return r.Run(ctx, prompt)
}

// Plan exposes the compiled plan for read-only inspection.
func (g *Guard) Plan() *schema.Plan {
	return g.plan
}

// Calls exposes the append-only call history for observability
// collaborators.
func (g *Guard) Calls() []*models.Call {
	return g.recorder.Calls()
}

// Call looks up one call by id.
func (g *Guard) Call(id string) (*models.Call, bool) {
	return g.recorder.Call(id)
}
