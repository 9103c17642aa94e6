package retry

import (
	"fmt"
	"strings"
)

// MultiError aggregates the error of every failed attempt.
type MultiError struct {
	Errors   []error
	Attempts int
}

// Error returns the last attempt's error text.
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "retry failed: no errors"
	}
	return e.Errors[len(e.Errors)-1].Error()
}

// Unwrap exposes the last attempt's error to errors.Is/As.
func (e *MultiError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// LastError returns the final attempt's error.
func (e *MultiError) LastError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// AllErrors renders every attempt for diagnostics.
func (e *MultiError) AllErrors() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "retry failed after %d attempts:", e.Attempts)
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  attempt %d: %v", i+1, err)
	}
	return b.String()
}
