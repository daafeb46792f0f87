package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/exhibitlab/docent-api/internal/domain"
)

// JobStore defines the interface for persisting and retrieving jobs.
//
// Concurrency contract: a job's mutable fields are owned by the single
// in-flight pipeline run for that job; all other callers are readers.
// GetByID must therefore return an independent snapshot that is safe to
// inspect while the owning run keeps writing, and CompareAndSwapStatus must
// be atomic so that at-most-one run can ever claim a pending job.
type JobStore interface {
	// Create saves a new job to the store.
	// Returns ErrJobExists if a job with the same ID is already present.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a snapshot of the job with the given ID.
	// Returns ErrJobNotFound if no such job exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// Update replaces the stored job record with the given one.
	// Returns ErrJobNotFound if no such job exists.
	Update(ctx context.Context, job *domain.Job) error

	// CompareAndSwapStatus atomically transitions the job's status from the
	// expected state to the new state, recording the given message.
	// Returns ErrJobNotFound if the job does not exist, or an error wrapping
	// domain.ErrInvalidStateTransition if the job is not in the expected
	// state. On failure the job is left unmodified.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to domain.JobStatus, message string) error
}
