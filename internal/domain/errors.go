package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or an input fails
	// validation. This is often wrapped with a more specific message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStateTransition is returned when an operation is attempted
	// in a job state that does not permit it, such as starting a run on a
	// job that has already left the pending state.
	ErrInvalidStateTransition = errors.New("invalid job state transition")

	// ErrJobNotReady is returned when results or derived content are
	// requested before the job has completed.
	ErrJobNotReady = errors.New("job has not completed yet")

	// ErrMalformedModelOutput is returned when a model response cannot be
	// interpreted into the expected structured shape.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrInvalidJobStatus is returned when a job status value is not one of
	// the known states.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidContentType is returned when a content type tag is not one
	// of the supported artifact kinds.
	ErrInvalidContentType = errors.New("invalid content type")
)
