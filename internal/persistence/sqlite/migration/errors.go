package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrStepFailed indicates that a migration step could not be executed.
	ErrStepFailed = errors.New("migration: step failed")
	// ErrVersionGap indicates that the step list is not a contiguous sequence.
	ErrVersionGap = errors.New("migration: step versions are not contiguous")
)

// StepError wraps a failure with the version and description of the step.
type StepError struct {
	Version     int
	Description string
	Err         error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("migration step %d (%s): %v", e.Version, e.Description, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}
