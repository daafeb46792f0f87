package api

import (
	"errors"
	"net/http"

	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/service"
	"github.com/exhibitlab/docent-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	// State conflicts: the job exists but is not in the right state for
	// the requested operation.
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrJobNotReady):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidContentType):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "Job is not in a state that allows this operation"

	case errors.Is(err, domain.ErrJobNotReady):
		return "Job has not completed yet"

	case errors.Is(err, domain.ErrInvalidContentType):
		return "Unsupported content type requested"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}
