package validators

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/goccy/go-json"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/rs/zerolog"
)

const defaultCriticPrompt = `You are a strict reviewer of generated text.

Text to review:
{{.Value}}

Score the text between 0.0 and 1.0 for overall quality and respond with
JSON only: {"score": <float>, "reason": "<short explanation>"}`

// LLMCritic asks a judge model to score the value and fails below a
// threshold. Unlike the other builtins it suspends on the judge call,
// so it honors context cancellation like the model caller does.
type LLMCritic struct {
	base
	promptTemplate *template.Template
	threshold      float64
	maxTokens      int
	temperature    float64
	client         llm.Client
	logger         *zerolog.Logger
}

type criticResponse struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type criticPromptData struct {
	Value string
}

// NewCriticConstructor closes over the judge client so the critic can
// be registered alongside the client-free builtins.
func NewCriticConstructor(client llm.Client, logger *zerolog.Logger) Constructor {
	return func(onFail models.OnFailAction, kwargs map[string]any) (Validator, error) {
		promptText := stringKwarg(kwargs, "prompt", defaultCriticPrompt)
		tmpl, err := template.New("llm-critic").Parse(promptText)
		if err != nil {
			return nil, fmt.Errorf("llm-critic: failed to parse prompt template: %w", err)
		}
		return &LLMCritic{
			base:           base{id: "llm-critic", onFail: onFail},
			promptTemplate: tmpl,
			threshold:      floatKwarg(kwargs, "threshold", 0.5),
			maxTokens:      intKwarg(kwargs, "max_tokens", 256),
			temperature:    floatKwarg(kwargs, "temperature", 0.0),
			client:         client,
			logger:         logger,
		}, nil
	}
}

func (v *LLMCritic) Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult {
	s, ok := stringValue(value)
	if !ok {
		return models.FailResult(fmt.Sprintf("llm-critic expects a string value, got %T", value))
	}

	var buf bytes.Buffer
	if err := v.promptTemplate.Execute(&buf, criticPromptData{Value: s}); err != nil {
		return models.FailResult(fmt.Sprintf("failed to build critic prompt: %v", err))
	}

	resp, err := v.client.InvokeModel(ctx, llm.Request{
		Prompt:      buf.String(),
		MaxTokens:   v.maxTokens,
		Temperature: v.temperature,
	})
	if err != nil {
		v.logger.Error().Err(err).Str("validator", v.id).Msg("critic model call failed")
		return models.FailResult(fmt.Sprintf("critic model call failed: %v", err))
	}

	content := stripMarkdownCodeBlock(resp.Content)
	var parsed criticResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		v.logger.Error().Err(err).Str("content", resp.Content).Msg("failed to deserialize critic response")
		return models.FailResult("failed to deserialize critic response")
	}

	if parsed.Score < 0.0 || parsed.Score > 1.0 {
		return models.FailResult(fmt.Sprintf("critic score %f out of range [0.0, 1.0]", parsed.Score))
	}

	if parsed.Score < v.threshold {
		reason := parsed.Reason
		if reason == "" {
			reason = "below quality threshold"
		}
		return models.FailResult(
			fmt.Sprintf("critic scored %.2f below threshold %.2f: %s", parsed.Score, v.threshold, reason),
		)
	}

	return models.PassResultWithMetadata(map[string]any{
		"critic_score":  parsed.Score,
		"critic_reason": parsed.Reason,
	})
}

// stripMarkdownCodeBlock removes markdown code block formatting if present.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}
		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}
		content = content[firstNewline+1 : closingBackticks]
		content = strings.TrimSpace(content)
	}

	return content
}
