package validators

import (
	"context"
	"errors"
	"testing"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

// MockLLMClient for testing
type MockLLMClient struct {
	ResponseToReturn *llm.Response
	ErrorToReturn    error
	WasCalled        bool
	LastRequest      *llm.Request
}

func (m *MockLLMClient) InvokeModel(ctx context.Context, request llm.Request) (*llm.Response, error) {
	m.WasCalled = true
	m.LastRequest = &request
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

func (m *MockLLMClient) InvokeModelWithRetry(ctx context.Context, request llm.Request) (*llm.Response, error) {
	return m.InvokeModel(ctx, request)
}

func newCritic(t *testing.T, client llm.Client, kwargs map[string]any) Validator {
	t.Helper()
	logger := zerolog.Nop()
	v, err := NewCriticConstructor(client, &logger)(models.OnFailReask, kwargs)
	if err != nil {
		t.Fatalf("critic constructor failed: %v", err)
	}
	return v
}

func TestLLMCritic_PassAboveThreshold(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.Response{Content: `{"score": 0.9, "reason": "solid"}`},
	}
	v := newCritic(t, mockClient, map[string]any{"threshold": 0.7})

	result := v.Validate(context.Background(), "a good answer", nil)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.ErrorMessage)
	}
	if result.Metadata["critic_score"] != 0.9 {
		t.Errorf("expected critic_score=0.9, got %v", result.Metadata["critic_score"])
	}
	if !mockClient.WasCalled {
		t.Error("expected judge model to be called")
	}
}

func TestLLMCritic_FailBelowThreshold(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.Response{Content: `{"score": 0.3, "reason": "vague"}`},
	}
	v := newCritic(t, mockClient, map[string]any{"threshold": 0.7})

	result := v.Validate(context.Background(), "a weak answer", nil)
	if result.Passed {
		t.Fatal("expected failure below threshold")
	}
	if result.ErrorMessage == "" {
		t.Error("expected error message carrying score and reason")
	}
}

func TestLLMCritic_MarkdownWrappedResponse(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.Response{Content: "```json\n{\"score\": 0.8, \"reason\": \"ok\"}\n```"},
	}
	v := newCritic(t, mockClient, map[string]any{"threshold": 0.5})

	result := v.Validate(context.Background(), "answer", nil)
	if !result.Passed {
		t.Errorf("expected pass after stripping code fences, got: %s", result.ErrorMessage)
	}
}

func TestLLMCritic_ModelCallFails(t *testing.T) {
	mockClient := &MockLLMClient{ErrorToReturn: errors.New("API error")}
	v := newCritic(t, mockClient, nil)

	result := v.Validate(context.Background(), "answer", nil)
	if result.Passed {
		t.Error("expected failure when the judge call fails")
	}
}

func TestLLMCritic_InvalidJSON(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.Response{Content: "not valid json"},
	}
	v := newCritic(t, mockClient, nil)

	result := v.Validate(context.Background(), "answer", nil)
	if result.Passed {
		t.Error("expected failure for undeserializable critic response")
	}
}

func TestLLMCritic_ScoreOutOfRange(t *testing.T) {
	mockClient := &MockLLMClient{
		ResponseToReturn: &llm.Response{Content: `{"score": 1.5, "reason": "test"}`},
	}
	v := newCritic(t, mockClient, nil)

	result := v.Validate(context.Background(), "answer", nil)
	if result.Passed {
		t.Error("expected failure for out-of-range score")
	}
}

func TestLLMCritic_InvalidTemplate(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewCriticConstructor(&MockLLMClient{}, &logger)(models.OnFailNoop, map[string]any{
		"prompt": "{{.Invalid",
	})
	if err == nil {
		t.Error("expected error for invalid prompt template")
	}
}
