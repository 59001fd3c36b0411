package execution

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
)

// fixingValidator fails values that are not "fixed" and offers "fixed"
// as the fix, so the fix_reask local re-validation path can be driven
// to a pass.
type fixingValidator struct {
	id     string
	onFail models.OnFailAction
	fix    any
}

func (f *fixingValidator) ID() string                  { return f.id }
func (f *fixingValidator) OnFail() models.OnFailAction { return f.onFail }
func (f *fixingValidator) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	if value == f.fix {
		return models.PassResult()
	}
	fail := models.FailResult("value is not acceptable")
	if f.fix != nil {
		fail = fail.WithFix(f.fix)
	}
	return fail
}

// customValidator carries a custom on-fail handler.
type customValidator struct {
	stubValidator
	handler validators.FixHandler
}

func (c *customValidator) OnFailHandler() validators.FixHandler { return c.handler }

func TestResolve_Exception_Aborts(t *testing.T) {
	v := &stubValidator{id: "strict", onFail: models.OnFailException}
	fail := models.FailResult("bad value")

	res := Resolve(context.Background(), "value", v, fail)

	if res.Kind != ResolutionAbort {
		t.Fatalf("expected abort, got %s", res.Kind)
	}
	var abortErr *AbortError
	if !errors.As(res.Err, &abortErr) {
		t.Fatalf("expected AbortError, got %T", res.Err)
	}
	if abortErr.Validator != "strict" {
		t.Errorf("expected validator id in abort error, got %s", abortErr.Validator)
	}
}

func TestResolve_Filter_DropsValue(t *testing.T) {
	v := &stubValidator{id: "f", onFail: models.OnFailFilter}

	res := Resolve(context.Background(), "value", v, models.FailResult("bad"))

	if res.Kind != ResolutionReplace || !res.Replaced || res.Value != nil {
		t.Errorf("expected replace with nil, got kind=%s value=%v", res.Kind, res.Value)
	}
}

func TestResolve_Refrain_SubstitutesEmpty(t *testing.T) {
	v := &stubValidator{id: "r", onFail: models.OnFailRefrain}

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"string", "text", ""},
		{"int", 42, 0},
		{"float", 1.5, float64(0)},
		{"bool", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(context.Background(), tt.value, v, models.FailResult("bad"))
			if res.Kind != ResolutionReplace || res.Value != tt.want {
				t.Errorf("expected empty %T substitute, got %v", tt.value, res.Value)
			}
		})
	}
}

func TestResolve_Refrain_EmptyMap(t *testing.T) {
	v := &stubValidator{id: "r", onFail: models.OnFailRefrain}

	res := Resolve(context.Background(), map[string]any{"k": "v"}, v, models.FailResult("bad"))
	m, ok := res.Value.(map[string]any)
	if !ok || len(m) != 0 {
		t.Errorf("expected empty map substitute, got %v", res.Value)
	}
}

func TestResolve_Noop_KeepsGoing(t *testing.T) {
	v := &stubValidator{id: "n", onFail: models.OnFailNoop}

	res := Resolve(context.Background(), "value", v, models.FailResult("bad"))

	if res.Kind != ResolutionKeepGoing {
		t.Errorf("expected keep_going, got %s", res.Kind)
	}
	if res.Value != "value" {
		t.Errorf("expected value untouched, got %v", res.Value)
	}
}

func TestResolve_Fix_UsesFixValue(t *testing.T) {
	v := &stubValidator{id: "fx", onFail: models.OnFailFix}
	fail := models.FailResult("too long").WithFix("short")

	res := Resolve(context.Background(), "very long value", v, fail)

	if res.Kind != ResolutionReplace || res.Value != "short" {
		t.Errorf("expected replace with fix value, got kind=%s value=%v", res.Kind, res.Value)
	}
}

func TestResolve_Fix_WithoutFixValue_Aborts(t *testing.T) {
	v := &stubValidator{id: "fx", onFail: models.OnFailFix}
	fail := models.FailResult("no fix available")

	res := Resolve(context.Background(), "value", v, fail)

	if res.Kind != ResolutionAbort {
		t.Fatalf("fix without a fix value must abort, got %s", res.Kind)
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "no fix value") {
		t.Errorf("expected contract-violation message, got %v", res.Err)
	}
}

func TestResolve_Reask_CarriesFeedback(t *testing.T) {
	v := &stubValidator{id: "rk", onFail: models.OnFailReask}
	fail := models.FailResult("value must be a dog breed")

	res := Resolve(context.Background(), "value", v, fail)

	if res.Kind != ResolutionRetry {
		t.Fatalf("expected request_retry, got %s", res.Kind)
	}
	if res.Feedback != "value must be a dog breed" {
		t.Errorf("expected feedback from the failure message, got '%s'", res.Feedback)
	}
}

func TestResolve_FixReask_LocalFixPasses(t *testing.T) {
	v := &fixingValidator{id: "fr", onFail: models.OnFailFixReask, fix: "fixed"}
	fail := v.Validate(context.Background(), "broken", nil)

	res := Resolve(context.Background(), "broken", v, fail)

	if res.Kind != ResolutionReplace || res.Value != "fixed" {
		t.Errorf("expected local fix to stand, got kind=%s value=%v", res.Kind, res.Value)
	}
}

func TestResolve_FixReask_NoFix_FallsBackToRetry(t *testing.T) {
	v := &fixingValidator{id: "fr", onFail: models.OnFailFixReask, fix: nil}
	fail := v.Validate(context.Background(), "broken", nil)

	res := Resolve(context.Background(), "broken", v, fail)

	if res.Kind != ResolutionRetry {
		t.Errorf("expected retry when no local fix exists, got %s", res.Kind)
	}
}

func TestResolve_Custom_UsesHandler(t *testing.T) {
	v := &customValidator{
		stubValidator: stubValidator{id: "c", onFail: models.OnFailCustom},
		handler: func(value any, fail models.ValidationResult) any {
			return "handled:" + value.(string)
		},
	}

	res := Resolve(context.Background(), "input", v, models.FailResult("bad"))

	if res.Kind != ResolutionReplace || res.Value != "handled:input" {
		t.Errorf("expected handler output, got kind=%s value=%v", res.Kind, res.Value)
	}
}

func TestResolve_Custom_NilHandler_Aborts(t *testing.T) {
	v := &customValidator{
		stubValidator: stubValidator{id: "c", onFail: models.OnFailCustom},
		handler:       nil,
	}

	res := Resolve(context.Background(), "input", v, models.FailResult("bad"))

	if res.Kind != ResolutionAbort {
		t.Errorf("custom without a handler must abort, got %s", res.Kind)
	}
}

func TestResolve_TotalOverEveryAction(t *testing.T) {
	actions := []models.OnFailAction{
		models.OnFailException, models.OnFailFilter, models.OnFailRefrain,
		models.OnFailNoop, models.OnFailFix, models.OnFailReask,
		models.OnFailFixReask, models.OnFailCustom,
	}

	for _, action := range actions {
		t.Run(string(action), func(t *testing.T) {
			v := &customValidator{
				stubValidator: stubValidator{id: "v", onFail: action},
				handler:       func(value any, fail models.ValidationResult) any { return value },
			}
			res := Resolve(context.Background(), "value", v, models.FailResult("bad").WithFix("fix"))
			if res.Kind == "" {
				t.Errorf("action %s produced no resolution", action)
			}
		})
	}
}

func TestResolve_UnknownAction_Aborts(t *testing.T) {
	v := &stubValidator{id: "v", onFail: models.OnFailAction("invented")}

	res := Resolve(context.Background(), "value", v, models.FailResult("bad"))

	if res.Kind != ResolutionAbort {
		t.Errorf("unknown action must resolve to abort, got %s", res.Kind)
	}
}
