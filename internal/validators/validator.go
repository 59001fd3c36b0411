package validators

import (
	"context"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// Validator is a single named unit of policy: given a value and
// context metadata it returns a pass, or a failure carrying an error
// message, optional fix value and optional error spans.
type Validator interface {
	ID() string
	OnFail() models.OnFailAction
	Validate(ctx context.Context, value any, metadata map[string]any) models.ValidationResult
}

// FixHandler produces a substitute value for a failed validation. It
// backs the custom on-fail action.
type FixHandler func(value any, fail models.ValidationResult) any

// CustomFixer is implemented by validators bound with a custom on-fail
// handler.
type CustomFixer interface {
	OnFailHandler() FixHandler
}

// base carries the identity and on-fail policy shared by all builtin
// validators.
type base struct {
	id      string
	onFail  models.OnFailAction
	handler FixHandler
}

func (b base) ID() string                  { return b.id }
func (b base) OnFail() models.OnFailAction { return b.onFail }
func (b base) OnFailHandler() FixHandler   { return b.handler }

// SentenceAccumulator buffers streamed text fragments and emits
// complete sentences once a terminal punctuation boundary is seen.
// Not safe for concurrent use; bind one accumulator per stream.
type SentenceAccumulator struct {
	buf strings.Builder
}

func isSentenceTerminal(r byte) bool {
	return r == '.' || r == '!' || r == '?'
}

// Push appends a fragment and returns any sentences completed by it,
// in order. Text after the last boundary stays buffered.
func (a *SentenceAccumulator) Push(chunk string) []string {
	a.buf.WriteString(chunk)
	text := a.buf.String()

	last := -1
	for i := 0; i < len(text); i++ {
		if isSentenceTerminal(text[i]) {
			last = i
		}
	}
	if last == -1 {
		return nil
	}

	complete := text[:last+1]
	rest := text[last+1:]

	var sentences []string
	start := 0
	for i := 0; i < len(complete); i++ {
		if isSentenceTerminal(complete[i]) {
			s := strings.TrimSpace(complete[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}

	a.buf.Reset()
	a.buf.WriteString(rest)
	return sentences
}

// Flush returns whatever is buffered without a terminal boundary and
// clears the accumulator.
func (a *SentenceAccumulator) Flush() string {
	rest := strings.TrimSpace(a.buf.String())
	a.buf.Reset()
	return rest
}

// Reset discards accumulated state. Call at stream start when an
// accumulator is reused.
func (a *SentenceAccumulator) Reset() {
	a.buf.Reset()
}
