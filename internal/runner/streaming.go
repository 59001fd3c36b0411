package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/execution"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
	"github.com/rs/zerolog"
)

// StreamOnReask selects how a reask-policy failure degrades while
// streaming: a re-ask cannot rewind a partially streamed response, so
// it either aborts the stream or is observed without blocking.
type StreamOnReask string

const (
	StreamReaskException StreamOnReask = "exception"
	StreamReaskNoop      StreamOnReask = "noop"
)

// StreamRunner validates a streamed response one sentence at a time.
// Sentence state accumulates per run, so a StreamRunner must not be
// shared across concurrent streams.
type StreamRunner struct {
	plan     *schema.Plan
	strategy execution.Strategy
	caller   StreamCaller
	recorder historyRecorder
	onReask  StreamOnReask
	metadata map[string]any
	logger   *zerolog.Logger
}

// historyRecorder is the slice of the recorder the stream runner
// needs; it keeps the full recorder out of the struct's contract.
type historyRecorder interface {
	StartCall(inputs models.CallInputs) *models.Call
	RecordIteration(call *models.Call, iteration models.Iteration)
	Finalize(call *models.Call, outcome models.ValidationOutcome)
}

func NewStreamRunner(
	plan *schema.Plan,
	strategy execution.Strategy,
	caller StreamCaller,
	recorder historyRecorder,
	onReask StreamOnReask,
	metadata map[string]any,
	logger *zerolog.Logger,
) *StreamRunner {
	if onReask == "" {
		// Fail loudly rather than silently passing a mis-validated
		// stream.
		onReask = StreamReaskException
	}
	return &StreamRunner{
		plan:     plan,
		strategy: strategy,
		caller:   caller,
		recorder: recorder,
		onReask:  onReask,
		metadata: metadata,
		logger:   logger,
	}
}

// Run consumes the stream, validating each completed sentence through
// the same resolver as the batch path. Fix, filter and refrain apply
// per sentence; reask degrades per the configured mode.
func (r *StreamRunner) Run(ctx context.Context, prompt string) (models.ValidationOutcome, error) {
	call := r.recorder.StartCall(models.CallInputs{Prompt: prompt, Metadata: r.metadata})
	started := time.Now()

	chunks, err := r.caller.CallStream(ctx, prompt, "")
	if err != nil {
		outcome := failedOutcome("", fmt.Sprintf("stream start failed: %v", err))
		r.recorder.Finalize(call, outcome)
		return outcome, fmt.Errorf("stream caller failed: %w", err)
	}

	var accumulator validators.SentenceAccumulator
	var raw strings.Builder
	var validated []string
	var logs []models.ValidatorLog
	passed := true

	flushSentence := func(sentence string) error {
		report := execution.Apply(ctx, r.plan, r.strategy, sentence, r.metadata)
		logs = append(logs, report.Logs...)

		if report.AbortErr != nil {
			passed = false
			return report.AbortErr
		}
		if len(report.Feedbacks) > 0 {
			passed = false
			if r.onReask == StreamReaskException {
				return &execution.AbortError{
					Validator: "stream",
					Fail:      models.FailResult("re-ask is not available mid-stream: " + report.Feedbacks[0]),
				}
			}
			// noop degrade: keep the sentence, record the failure.
			validated = append(validated, sentence)
			return nil
		}
		if !report.Passed {
			passed = false
		}
		if report.HasOutput {
			if s, ok := report.Value.(string); ok {
				validated = append(validated, s)
			}
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			outcome := failedOutcome(raw.String(), "deadline exceeded during streaming")
			r.recorder.Finalize(call, outcome)
			return outcome, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case chunk, open := <-chunks:
			if !open {
				if rest := accumulator.Flush(); rest != "" {
					if err := flushSentence(rest); err != nil {
						return r.finishWithAbort(call, raw.String(), logs, err)
					}
				}
				outcome := models.ValidationOutcome{
					ValidatedOutput:  strings.Join(validated, " "),
					RawOutput:        raw.String(),
					ValidationPassed: passed,
					Metadata: map[string]any{
						"validation_results": logs,
					},
				}
				r.recorder.RecordIteration(call, models.Iteration{
					Number:    1,
					Output:    raw.String(),
					Results:   logs,
					StartedAt: started,
					Duration:  time.Since(started),
				})
				r.recorder.Finalize(call, outcome)
				return outcome, nil
			}

			raw.WriteString(chunk)
			for _, sentence := range accumulator.Push(chunk) {
				if err := flushSentence(sentence); err != nil {
					return r.finishWithAbort(call, raw.String(), logs, err)
				}
			}
		}
	}
}

func (r *StreamRunner) finishWithAbort(call *models.Call, raw string, logs []models.ValidatorLog, err error) (models.ValidationOutcome, error) {
	outcome := failedOutcome(raw, err.Error())
	outcome.Metadata["validation_results"] = logs
	r.recorder.Finalize(call, outcome)
	return outcome, err
}
