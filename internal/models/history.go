package models

import (
	"time"
)

// CallInputs captures what one guard invocation was asked to do.
type CallInputs struct {
	Prompt    string         `json:"prompt,omitempty"`
	Candidate string         `json:"candidate,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Iteration is the record of a single generate-validate attempt inside
// a call. Iterations are append-only; past iterations are never
// mutated.
type Iteration struct {
	Number    int            `json:"number"`
	Output    string         `json:"output"`
	Results   []ValidatorLog `json:"validation_results"`
	Feedback  string         `json:"feedback,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Call is the audit record of one guard invocation: its inputs, every
// attempt made, and the final outcome once the invocation returns.
type Call struct {
	ID        string             `json:"id"`
	Inputs    CallInputs         `json:"inputs"`
	Attempts  []Iteration        `json:"attempts"`
	Outcome   *ValidationOutcome `json:"outcome,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}
