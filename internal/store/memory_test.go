package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exhibitlab/docent-api/internal/domain"
)

func newTestJob(t *testing.T) *domain.Job {
	t.Helper()
	job, err := domain.NewJob("/tmp/uploads/test", 3)
	require.NoError(t, err)
	return job
}

func TestMemoryJobStoreCreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryJobStore()

	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobStatusPending, got.Status)

	// Duplicate create is rejected
	err = s.Create(ctx, job)
	assert.ErrorIs(t, err, ErrDuplicate)

	// Unknown ID
	_, err = s.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestMemoryJobStoreCreateInvalid(t *testing.T) {
	t.Parallel()
	s := NewMemoryJobStore()

	bad := &domain.Job{ID: uuid.New(), Status: domain.JobStatusPending}
	err := s.Create(context.Background(), bad)
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Operation)
	assert.ErrorIs(t, err, domain.ErrNoJobImages)
}

func TestMemoryJobStoreUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryJobStore()

	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	job.ProcessedCount = 2
	job.Results = []domain.TranscriptionItem{
		{Filename: "a.jpg", Text: "one", Success: true},
		{Filename: "b.jpg", Success: false, Error: "boom"},
	}
	require.NoError(t, s.Update(ctx, job))

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ProcessedCount)
	require.Len(t, got.Results, 2)

	// Update of an unknown job fails
	missing := newTestJob(t)
	assert.ErrorIs(t, s.Update(ctx, missing), ErrJobNotFound)
}

func TestMemoryJobStoreSnapshotIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryJobStore()

	job := newTestJob(t)
	job.Results = []domain.TranscriptionItem{{Filename: "a.jpg", Text: "one", Success: true}}
	job.ProcessedCount = 1
	require.NoError(t, s.Create(ctx, job))

	snap, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)

	// Mutating the snapshot must not affect the stored record.
	snap.Results[0].Text = "tampered"
	snap.ProcessedCount = 99

	fresh, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", fresh.Results[0].Text)
	assert.Equal(t, 1, fresh.ProcessedCount)
}

func TestMemoryJobStoreArtifactIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryJobStore()

	job := newTestJob(t)
	job.Artifacts = map[domain.ContentType]domain.Artifact{
		domain.ContentTypePodcast: {Type: domain.ContentTypePodcast, Text: "script"},
	}
	require.NoError(t, s.Create(ctx, job))

	snap, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	snap.Artifacts[domain.ContentTypePodcast] = domain.Artifact{
		Type: domain.ContentTypePodcast,
		Text: "tampered",
	}

	fresh, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "script", fresh.Artifacts[domain.ContentTypePodcast].Text)
}

func TestMemoryJobStoreCompareAndSwapStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryJobStore()

	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	err := s.CompareAndSwapStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusProcessing, "processing images")
	require.NoError(t, err)

	got, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusProcessing, got.Status)
	assert.Equal(t, "processing images", got.Message)

	// Second swap from pending must fail and leave the job unchanged.
	err = s.CompareAndSwapStatus(ctx, job.ID, domain.JobStatusPending, domain.JobStatusProcessing, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	after, err := s.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusProcessing, after.Status)
	assert.Equal(t, "processing images", after.Message)

	// Unknown job
	err = s.CompareAndSwapStatus(ctx, uuid.New(), domain.JobStatusPending, domain.JobStatusProcessing, "")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryJobStoreConcurrentClaim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryJobStore()

	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CompareAndSwapStatus(ctx, job.ID,
				domain.JobStatusPending, domain.JobStatusProcessing, "claimed")
			if err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent claim may succeed")
}
