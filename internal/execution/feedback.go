package execution

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
)

// Introspect extracts the corrective message from a single failure,
// falling back to its error spans when the message is empty.
func Introspect(fail models.ValidationResult) string {
	if fail.ErrorMessage != "" {
		return fail.ErrorMessage
	}
	if len(fail.ErrorSpans) > 0 {
		messages := make([]string, 0, len(fail.ErrorSpans))
		for _, span := range fail.ErrorSpans {
			messages = append(messages, span.Message)
		}
		return strings.Join(messages, "; ")
	}
	return "validation failed"
}

// BuildFeedback synthesizes the corrective prompt suffix for a re-ask
// from every failure of the attempt, including span positions so the
// generator can localize what to change.
func BuildFeedback(logs []models.ValidatorLog) string {
	var b strings.Builder
	b.WriteString("Your previous response failed validation. Correct the following and respond again:\n")

	for _, log := range logs {
		if log.Result.Passed {
			continue
		}
		fmt.Fprintf(&b, "- [%s at %s] %s\n", log.Validator, log.Path, Introspect(log.Result))
		for _, span := range log.Result.ErrorSpans {
			fmt.Fprintf(&b, "  characters %d-%d: %s\n", span.Start, span.End, span.Message)
		}
	}

	return b.String()
}
