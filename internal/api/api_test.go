package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/history"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/runner/mocks"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/schema"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validators"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

const testRail = `
	<rail><output validators="lower-case" on-fail-lower-case="fix"/></rail>`

func setupTestAPI(t *testing.T, caller runner.ModelCaller) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()

	plan, err := schema.NewCompiler(validators.NewRegistry(), &logger).CompileRAIL(testRail)
	if err != nil {
		t.Fatalf("failed to compile plan: %v", err)
	}

	g := guard.New(plan, &logger)
	handler := api.NewHandler(g, caller, nil, &logger)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)
	return container
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_Validate(t *testing.T) {
	container := setupTestAPI(t, nil)

	body, _ := json.Marshal(api.ValidateRequest{Candidate: "Mixed Case"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var outcome models.ValidationOutcome
	if err := json.Unmarshal(recorder.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !outcome.ValidationPassed {
		t.Error("expected fixed value to pass")
	}
	if outcome.ValidatedOutput != "mixed case" {
		t.Errorf("expected fixed output, got %v", outcome.ValidatedOutput)
	}
}

func TestAPI_Validate_BadBody(t *testing.T) {
	container := setupTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestAPI_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := mocks.NewMockModelCaller(ctrl)
	caller.EXPECT().Call(gomock.Any(), "say hello", "").Return("hello there", nil)

	container := setupTestAPI(t, caller)

	body, _ := json.Marshal(api.RunRequest{Prompt: "say hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", recorder.Code, recorder.Body.String())
	}

	var outcome models.ValidationOutcome
	if err := json.Unmarshal(recorder.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !outcome.ValidationPassed {
		t.Error("expected pass")
	}
}

func TestAPI_CallHistory(t *testing.T) {
	container := setupTestAPI(t, nil)

	// Produce one call through the validate endpoint.
	body, _ := json.Marshal(api.ValidateRequest{Candidate: "already lower"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	container.ServeHTTP(httptest.NewRecorder(), req)

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/calls", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, listReq)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var calls []models.Call
	if err := json.Unmarshal(recorder.Body.Bytes(), &calls); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/calls/"+calls[0].ID, nil)
	getRecorder := httptest.NewRecorder()
	container.ServeHTTP(getRecorder, getReq)

	if getRecorder.Code != http.StatusOK {
		t.Errorf("Expected status 200 for existing call, got %d", getRecorder.Code)
	}

	missReq := httptest.NewRequest(http.MethodGet, "/api/v1/calls/does-not-exist", nil)
	missRecorder := httptest.NewRecorder()
	container.ServeHTTP(missRecorder, missReq)

	if missRecorder.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown call, got %d", missRecorder.Code)
	}
}

func TestAPI_CallHistory_FromArchive(t *testing.T) {
	logger := zerolog.Nop()

	archive, err := history.NewArchive(filepath.Join(t.TempDir(), "calls.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	plan, err := schema.NewCompiler(validators.NewRegistry(), &logger).CompileRAIL(testRail)
	if err != nil {
		t.Fatalf("failed to compile plan: %v", err)
	}

	g := guard.New(plan, &logger, guard.WithCallSink(archive))
	handler := api.NewHandler(g, nil, archive, &logger)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)

	body, _ := json.Marshal(api.ValidateRequest{Candidate: "already lower"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	container.ServeHTTP(httptest.NewRecorder(), req)

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/calls", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, listReq)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var calls []models.Call
	if err := json.Unmarshal(recorder.Body.Bytes(), &calls); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 archived call, got %d", len(calls))
	}
	if calls[0].Outcome == nil || !calls[0].Outcome.ValidationPassed {
		t.Errorf("expected a finalized passing call from the archive, got %+v", calls[0].Outcome)
	}
}
