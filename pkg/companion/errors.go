// Package companion provides the session façade for the Emma companion:
// turn processing, proactive polling, and memory inspection.
package companion

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	// Configuration errors are the only fatal class; they fail session
	// setup and are never silently clamped.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrGenerationFailed indicates that the language-model call failed or
	// timed out. Network, auth, and rate-limit failures all collapse into
	// this one kind.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrDuplicateMemory indicates that a near-duplicate memory was
	// suppressed. Not surfaced to the user.
	ErrDuplicateMemory = errors.New("duplicate memory suppressed")

	// ErrRecordNotFound indicates that a memory record was not owned by
	// the session's store.
	ErrRecordNotFound = errors.New("memory record not found")

	// ErrJournalOperation indicates that a journal write failed.
	// Journal failures are never fatal to the session.
	ErrJournalOperation = errors.New("journal operation failed")
)

// CompanionError wraps errors with operation context.
//
// Example:
//
//	err := &CompanionError{
//	    Op:  "ProcessTurn",
//	    Err: ErrGenerationFailed,
//	}
//	// Error() returns: "emma: ProcessTurn: generation failed"
type CompanionError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "emma: <Op>: <Err>"
func (e *CompanionError) Error() string {
	return fmt.Sprintf("emma: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with CompanionError.
func (e *CompanionError) Unwrap() error {
	return e.Err
}

// NewCompanionError creates a new CompanionError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewCompanionError("Poll", err)
//	}
func NewCompanionError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CompanionError{
		Op:  op,
		Err: err,
	}
}
