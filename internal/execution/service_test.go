package execution

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
)

// stubValidator is a hand-built validator with a canned result and an
// optional artificial delay, for exercising the strategies directly.
type stubValidator struct {
	id     string
	onFail models.OnFailAction
	result models.ValidationResult
	delay  time.Duration
}

func (s *stubValidator) ID() string                  { return s.id }
func (s *stubValidator) OnFail() models.OnFailAction { return s.onFail }
func (s *stubValidator) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.result
}

func TestSequential_RunsAllInOrder(t *testing.T) {
	vs := []validators.Validator{
		&stubValidator{id: "a", result: models.FailResult("a failed")},
		&stubValidator{id: "b", result: models.PassResult()},
		&stubValidator{id: "c", result: models.FailResult("c failed")},
	}

	results := Sequential{}.Validate(context.Background(), "value", vs, nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// No short-circuit: the failure at position 0 did not stop c from running.
	if results[0].Passed || !results[1].Passed || results[2].Passed {
		t.Errorf("expected fail/pass/fail, got %v/%v/%v", results[0].Passed, results[1].Passed, results[2].Passed)
	}
	if results[2].ErrorMessage != "c failed" {
		t.Errorf("expected result order to follow binding order, got '%s'", results[2].ErrorMessage)
	}
}

func TestConcurrent_PreservesBindingOrder(t *testing.T) {
	// Slower validators earlier in the list: index-slotted gathering
	// must still return results in binding order.
	vs := make([]validators.Validator, 6)
	for i := range vs {
		vs[i] = &stubValidator{
			id:     fmt.Sprintf("v%d", i),
			result: models.FailResult(fmt.Sprintf("failure %d", i)),
			delay:  time.Duration(len(vs)-i) * 5 * time.Millisecond,
		}
	}

	results := Concurrent{}.Validate(context.Background(), "value", vs, nil)

	if len(results) != len(vs) {
		t.Fatalf("expected %d results, got %d", len(vs), len(results))
	}
	for i, r := range results {
		want := fmt.Sprintf("failure %d", i)
		if r.ErrorMessage != want {
			t.Errorf("position %d: expected '%s', got '%s'", i, want, r.ErrorMessage)
		}
	}
}

func TestStrategies_AgreeOnResults(t *testing.T) {
	vs := []validators.Validator{
		&stubValidator{id: "a", result: models.PassResult()},
		&stubValidator{id: "b", result: models.FailResult("bad").WithFix("good")},
		&stubValidator{id: "c", result: models.FailResult("worse")},
	}

	seq := Sequential{}.Validate(context.Background(), "value", vs, nil)
	conc := Concurrent{}.Validate(context.Background(), "value", vs, nil)

	if len(seq) != len(conc) {
		t.Fatalf("result count differs: %d vs %d", len(seq), len(conc))
	}
	for i := range seq {
		if seq[i].Passed != conc[i].Passed || seq[i].ErrorMessage != conc[i].ErrorMessage {
			t.Errorf("position %d differs between strategies", i)
		}
	}
}
