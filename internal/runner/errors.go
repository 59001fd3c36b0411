package runner

import (
	"errors"
	"fmt"
)

// ErrTimeout marks a deadline exceeded while waiting on the model
// caller or on a backoff sleep. It is distinct from a validation
// failure: no further attempts are made once it is raised.
var ErrTimeout = errors.New("deadline exceeded during generation or backoff")

// RetryExhaustedError is the terminal failure once every allowed
// re-ask has been consumed without a passing attempt.
type RetryExhaustedError struct {
	Attempts int
	Feedback string
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("validation still failing after %d attempts: %s", e.Attempts, e.Feedback)
}
