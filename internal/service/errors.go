package service

import (
	"errors"
	"fmt"

	"github.com/exhibitlab/docent-api/internal/store"
)

// Common sentinel errors for JobService.
var (
	// ErrJobNotFound indicates that the job does not exist.
	ErrJobNotFound = errors.New("job not found")
)

// JobServiceError wraps errors from the job service with context.
type JobServiceError struct {
	// Operation is the operation that failed (e.g., "submit_job", "run_job").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for JobServiceError.
func (e *JobServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("job service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("job service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *JobServiceError) Unwrap() error {
	return e.Err
}

// NewJobServiceError wraps err with operation context. Known sentinel
// errors pass through unwrapped so callers can match them directly.
func NewJobServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrJobNotFound) || errors.Is(err, store.ErrJobNotFound) {
		return ErrJobNotFound
	}

	return &JobServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
