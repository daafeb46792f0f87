package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/exhibitlab/docent-api/internal/domain"
)

// MemoryJobStore is the reference JobStore implementation backed by a
// process-local map. It provides no durability across restarts; checkpoint
// files written by the pipeline are the only recovery aid.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.Job
}

// NewMemoryJobStore creates an empty in-memory job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[uuid.UUID]*domain.Job),
	}
}

// Create saves a new job to the store.
func (s *MemoryJobStore) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return NewStoreError("job", "create", "invalid job", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrJobExists
	}

	s.jobs[job.ID] = copyJob(job)
	return nil
}

// GetByID retrieves a snapshot of the job with the given ID.
func (s *MemoryJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	return copyJob(job), nil
}

// Update replaces the stored job record with the given one.
func (s *MemoryJobStore) Update(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}

	updated := copyJob(job)
	updated.UpdatedAt = time.Now().UTC()
	s.jobs[job.ID] = updated
	return nil
}

// CompareAndSwapStatus atomically transitions the job's status from the
// expected state to the new state.
func (s *MemoryJobStore) CompareAndSwapStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.JobStatus,
	message string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	if job.Status != from {
		return fmt.Errorf("%w: job is %s, expected %s",
			domain.ErrInvalidStateTransition, job.Status, from)
	}

	job.Status = to
	job.Message = message
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// Len returns the number of jobs currently in the store.
func (s *MemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// copyJob returns a deep copy so that readers never alias the stored
// record's results slice or artifact map.
func copyJob(job *domain.Job) *domain.Job {
	dup := *job
	if job.Results != nil {
		dup.Results = make([]domain.TranscriptionItem, len(job.Results))
		copy(dup.Results, job.Results)
	}
	if job.Artifacts != nil {
		dup.Artifacts = make(map[domain.ContentType]domain.Artifact, len(job.Artifacts))
		for ct, artifact := range job.Artifacts {
			dup.Artifacts[ct] = artifact
		}
	}
	return &dup
}

// Ensure MemoryJobStore implements JobStore.
var _ JobStore = (*MemoryJobStore)(nil)
