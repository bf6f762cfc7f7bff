package invoker

import (
	"fmt"
	"time"
)

// InvocationError reports that ansible-lint could not be executed or
// exited outside its documented contract (0 = clean, 2 = violations).
type InvocationError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ansible-lint invocation failed: %v", e.Err)
	}
	return fmt.Sprintf("ansible-lint exited with unexpected code %d", e.ExitCode)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the lint subprocess was killed because it
// did not finish before the deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ansible-lint timed out after %s", e.Timeout)
}
