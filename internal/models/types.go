package models

// OnFailAction is the declared remediation policy for a validator failure.
type OnFailAction string

const (
	OnFailException OnFailAction = "exception"
	OnFailFilter    OnFailAction = "filter"
	OnFailRefrain   OnFailAction = "refrain"
	OnFailNoop      OnFailAction = "noop"
	OnFailFix       OnFailAction = "fix"
	OnFailReask     OnFailAction = "reask"
	OnFailFixReask  OnFailAction = "fix_reask"
	OnFailCustom    OnFailAction = "custom"
)

// ParseOnFailAction maps a rules-document string to an OnFailAction.
// Unknown strings are rejected so a typo in a schema never silently
// becomes a noop.
func ParseOnFailAction(s string) (OnFailAction, bool) {
	switch OnFailAction(s) {
	case OnFailException, OnFailFilter, OnFailRefrain, OnFailNoop,
		OnFailFix, OnFailReask, OnFailFixReask, OnFailCustom:
		return OnFailAction(s), true
	}
	return "", false
}

// ErrorSpan marks the sub-range of a value responsible for a failure.
type ErrorSpan struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
	FixValue string `json:"fix_value,omitempty"`
}

// ValidationResult is the outcome of a single validator run: either a
// pass, or a failure carrying an error message, optional fix value and
// optional error spans.
type ValidationResult struct {
	Passed       bool           `json:"passed"`
	ErrorMessage string         `json:"error_message,omitempty"`
	FixValue     any            `json:"fix_value,omitempty"`
	HasFix       bool           `json:"has_fix,omitempty"`
	ErrorSpans   []ErrorSpan    `json:"error_spans,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// PassResult builds a passing result.
func PassResult() ValidationResult {
	return ValidationResult{Passed: true}
}

// PassResultWithMetadata builds a passing result carrying metadata.
func PassResultWithMetadata(metadata map[string]any) ValidationResult {
	return ValidationResult{Passed: true, Metadata: metadata}
}

// FailResult builds a failing result. A failure always carries a
// non-empty error message.
func FailResult(errorMessage string) ValidationResult {
	if errorMessage == "" {
		errorMessage = "validation failed"
	}
	return ValidationResult{Passed: false, ErrorMessage: errorMessage}
}

// WithFix attaches a fix value to a failing result. HasFix is tracked
// separately so an explicit empty-string fix is distinguishable from
// no fix at all.
func (r ValidationResult) WithFix(fix any) ValidationResult {
	r.FixValue = fix
	r.HasFix = true
	return r
}

// WithSpans attaches error spans to a failing result.
func (r ValidationResult) WithSpans(spans ...ErrorSpan) ValidationResult {
	r.ErrorSpans = append(r.ErrorSpans, spans...)
	return r
}

// ValidatorReference is the compiled, declarative binding of a
// validator to a JSON path, before instantiation.
type ValidatorReference struct {
	ValidatorID string         `json:"validator_id"`
	JSONPath    string         `json:"json_path"`
	OnFail      OnFailAction   `json:"on_fail"`
	Kwargs      map[string]any `json:"kwargs,omitempty"`
}

// ValidatorLog records one validator's outcome inside an iteration.
type ValidatorLog struct {
	Validator string           `json:"validator"`
	Path      string           `json:"path"`
	OnFail    OnFailAction     `json:"on_fail"`
	Result    ValidationResult `json:"result"`
}

// ValidationOutcome is the externally visible result of one guard
// invocation. ValidatedOutput is nil exactly when validation failed
// and no fix, filter or refrain action produced a substitute value.
type ValidationOutcome struct {
	ValidatedOutput  any            `json:"validated_output,omitempty"`
	RawOutput        string         `json:"raw_output"`
	ValidationPassed bool           `json:"validation_passed"`
	ErrorSpans       []ErrorSpan    `json:"error_spans,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}
