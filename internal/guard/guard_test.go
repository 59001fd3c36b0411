package guard

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/execution"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/history"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner/mocks"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func newGuard(t *testing.T, rail string, options ...Option) *Guard {
	t.Helper()
	logger := zerolog.Nop()
	plan, err := schema.NewCompiler(validators.NewRegistry(), &logger).CompileRAIL(rail)
	if err != nil {
		t.Fatalf("failed to compile plan: %v", err)
	}
	return New(plan, &logger, options...)
}

func TestValidate_PassWithinBounds(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="valid-length: min=5 max=30" on-fail-valid-length="exception"/></rail>`)

	outcome, err := g.Validate(context.Background(), "a perfectly sized value")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !outcome.ValidationPassed {
		t.Error("expected pass")
	}
	if outcome.ValidatedOutput != "a perfectly sized value" {
		t.Errorf("expected value untouched, got %v", outcome.ValidatedOutput)
	}
}

func TestValidate_ExceptionPropagates(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="valid-length: max=5" on-fail-valid-length="exception"/></rail>`)

	outcome, err := g.Validate(context.Background(), "far too long for the contract")

	var abortErr *execution.AbortError
	if !errors.As(err, &abortErr) {
		t.Fatalf("expected AbortError, got %v", err)
	}
	if outcome.ValidationPassed {
		t.Error("expected failed outcome alongside the error")
	}
	if len(outcome.ErrorSpans) == 0 {
		t.Error("expected error spans on the outcome")
	}
}

func TestValidate_FilterDropsOutput(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="valid-length: min=100" on-fail-valid-length="filter"/></rail>`)

	outcome, err := g.Validate(context.Background(), "short")
	if err != nil {
		t.Fatalf("filter is not an error: %v", err)
	}
	if outcome.ValidationPassed {
		t.Error("expected failed outcome")
	}
	if outcome.ValidatedOutput != nil {
		t.Errorf("filtered output must be absent, got %v", outcome.ValidatedOutput)
	}
	if outcome.RawOutput != "short" {
		t.Error("raw output stays on the record")
	}
}

func TestValidate_FixSubstitutes(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="lower-case" on-fail-lower-case="fix"/></rail>`)

	outcome, err := g.Validate(context.Background(), "Mixed Case Text")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !outcome.ValidationPassed {
		t.Error("a fixed failure counts as passing")
	}
	if outcome.ValidatedOutput != "mixed case text" {
		t.Errorf("expected fixed value, got %v", outcome.ValidatedOutput)
	}
}

func TestValidate_ReaskSurfacesFeedback(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="valid-choices: choices=dog,cat" on-fail-valid-choices="reask"/></rail>`)

	outcome, err := g.Validate(context.Background(), "hamster")
	if err != nil {
		t.Fatalf("single-pass reask is not an error: %v", err)
	}
	if outcome.ValidationPassed {
		t.Error("expected failed outcome")
	}
	feedback, ok := outcome.Metadata["reask_feedback"].(string)
	if !ok || !strings.Contains(feedback, "hamster") {
		t.Errorf("expected reask feedback in metadata, got %v", outcome.Metadata["reask_feedback"])
	}
}

func TestValidate_NonParseableStructuredOutput(t *testing.T) {
	g := newGuard(t, `
		<rail>
			<output type="object">
				<string name="name" validators="lower-case" on-fail-lower-case="fix"/>
			</output>
		</rail>`)

	outcome, err := g.Validate(context.Background(), "this is not json")
	if err != nil {
		t.Fatalf("non-parseable output is data, not an error: %v", err)
	}
	if outcome.ValidationPassed {
		t.Error("expected failed outcome")
	}
	if outcome.Metadata["failure_reason"] == nil {
		t.Error("expected failure reason in metadata")
	}
}

func TestValidate_RecordsHistory(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="lower-case" on-fail-lower-case="fix"/></rail>`)

	g.Validate(context.Background(), "One")
	g.Validate(context.Background(), "two")

	calls := g.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls in history, got %d", len(calls))
	}
	if _, ok := g.Call(calls[0].ID); !ok {
		t.Error("expected lookup by id to work")
	}
	for _, c := range calls {
		if c.Outcome == nil {
			t.Error("expected every call finalized")
		}
	}
}

func TestValidate_ArchivesFinalizedCalls(t *testing.T) {
	archive, err := history.NewArchive(filepath.Join(t.TempDir(), "calls.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	g := newGuard(t, `
		<rail><output validators="lower-case" on-fail-lower-case="fix"/></rail>`,
		WithCallSink(archive),
	)

	if _, err := g.Validate(context.Background(), "Mixed Case"); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	calls := g.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call in history, got %d", len(calls))
	}

	archived, err := archive.GetCall(context.Background(), calls[0].ID)
	if err != nil {
		t.Fatalf("expected the finalized call in the archive: %v", err)
	}
	if archived.Outcome == nil || !archived.Outcome.ValidationPassed {
		t.Errorf("expected a finalized passing outcome in the archive, got %+v", archived.Outcome)
	}
}

func TestRun_EndToEndWithReask(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := mocks.NewMockModelCaller(ctrl)
	gomock.InOrder(
		caller.EXPECT().Call(gomock.Any(), "pick a pet", "").Return("hamster", nil),
		caller.EXPECT().Call(gomock.Any(), "pick a pet", gomock.Not("")).Return("dog", nil),
	)

	g := newGuard(t, `
		<rail><output validators="valid-choices: choices=dog,cat" on-fail-valid-choices="reask"/></rail>`,
		WithRunnerOptions(runner.Options{NumReasks: 2, BaseDelay: time.Millisecond}),
		WithStrategy(execution.Sequential{}),
	)

	outcome, err := g.Run(context.Background(), caller, "pick a pet")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.ValidationPassed || outcome.ValidatedOutput != "dog" {
		t.Errorf("expected pass with 'dog', got %+v", outcome)
	}

	calls := g.Calls()
	if len(calls) != 1 || len(calls[0].Attempts) != 2 {
		t.Errorf("expected 1 call with 2 attempts in history")
	}
}

func TestRunStream_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := mocks.NewMockStreamCaller(ctrl)

	chunks := make(chan string, 2)
	chunks <- "HELLO There. "
	chunks <- "ALL Good."
	close(chunks)
	caller.EXPECT().CallStream(gomock.Any(), "say hi", "").Return((<-chan string)(chunks), nil)

	g := newGuard(t, `
		<rail><output validators="lower-case" on-fail-lower-case="fix"/></rail>`)

	outcome, err := g.RunStream(context.Background(), caller, "say hi")
	if err != nil {
		t.Fatalf("RunStream failed: %v", err)
	}
	if !outcome.ValidationPassed {
		t.Error("expected pass after per-sentence fixes")
	}
	if outcome.ValidatedOutput != "hello there. all good." {
		t.Errorf("expected fixed stream, got %v", outcome.ValidatedOutput)
	}
}

func TestValidate_ValidationResultsInMetadata(t *testing.T) {
	g := newGuard(t, `
		<rail><output validators="two-words" on-fail-two-words="noop"/></rail>`)

	outcome, _ := g.Validate(context.Background(), "exactly two")
	logs, ok := outcome.Metadata["validation_results"].([]models.ValidatorLog)
	if !ok || len(logs) != 1 {
		t.Fatalf("expected validator logs in metadata, got %v", outcome.Metadata["validation_results"])
	}
	if logs[0].Validator != "two-words" || !logs[0].Result.Passed {
		t.Errorf("unexpected log: %+v", logs[0])
	}
}
