package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/exhibitlab/docent-api/internal/content"
	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/events"
	"github.com/exhibitlab/docent-api/internal/image"
	"github.com/exhibitlab/docent-api/internal/store"
	"github.com/exhibitlab/docent-api/internal/task"
)

// ContentDispatcher generates derivative content from compiled text.
// Implemented by content.Dispatcher.
type ContentDispatcher interface {
	Generate(
		ctx context.Context,
		jobID string,
		compiledText string,
		types []domain.ContentType,
	) (*content.Result, error)
}

// JobService provides job lifecycle operations.
type JobService interface {
	// Submit registers the images in sourceDir as a new pending job.
	Submit(ctx context.Context, sourceDir string) (*domain.Job, error)

	// Run claims a pending job for processing and requests a pipeline
	// run. At most one run per job can ever be started.
	Run(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)

	// Status retrieves the current snapshot of a job.
	Status(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)

	// Results returns a completed job including its compiled document.
	// Jobs in any other state return domain.ErrJobNotReady.
	Results(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)

	// GenerateContent produces derivative content from a completed
	// job's compiled document.
	GenerateContent(
		ctx context.Context,
		jobID uuid.UUID,
		types []domain.ContentType,
	) (*content.Result, error)
}

// jobServiceImpl implements the JobService interface.
type jobServiceImpl struct {
	jobStore     store.JobStore
	eventEmitter events.EventEmitter
	dispatcher   ContentDispatcher
	logger       *slog.Logger
}

// NewJobService creates a JobService. It returns an error if any required
// dependency is nil.
func NewJobService(
	jobStore store.JobStore,
	eventEmitter events.EventEmitter,
	dispatcher ContentDispatcher,
	logger *slog.Logger,
) (JobService, error) {
	if jobStore == nil {
		return nil, &JobServiceError{Operation: "create_service", Message: "jobStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &JobServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &JobServiceError{Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &jobServiceImpl{
		jobStore:     jobStore,
		eventEmitter: eventEmitter,
		dispatcher:   dispatcher,
		logger:       logger.With("component", "job_service"),
	}, nil
}

// Submit counts the supported images in sourceDir and registers them as a
// new pending job. The directory must contain at least one supported
// image.
func (s *jobServiceImpl) Submit(ctx context.Context, sourceDir string) (*domain.Job, error) {
	paths, err := image.ListImages(sourceDir)
	if err != nil {
		return nil, NewJobServiceError("submit_job", "failed to inspect upload directory", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no supported images in upload", domain.ErrValidation)
	}

	job, err := domain.NewJob(sourceDir, len(paths))
	if err != nil {
		return nil, NewJobServiceError("submit_job", "failed to create job", err)
	}

	if err := s.jobStore.Create(ctx, job); err != nil {
		return nil, NewJobServiceError("submit_job", "failed to save job", err)
	}

	s.logger.Info("job submitted",
		"job_id", job.ID,
		"total_images", job.TotalImages)
	return job, nil
}

// Run claims the job for processing and emits a transcription task
// request. The claim is a compare-and-swap from pending to processing, so
// concurrent or repeated runs of the same job lose the race and fail with
// domain.ErrInvalidStateTransition.
func (s *jobServiceImpl) Run(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	err := s.jobStore.CompareAndSwapStatus(ctx, jobID,
		domain.JobStatusPending, domain.JobStatusProcessing, "transcription started")
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, NewJobServiceError("run_job", "failed to claim job", err)
	}

	payload := struct {
		JobID string `json:"job_id"`
	}{JobID: jobID.String()}

	event, err := events.NewTaskRequestEvent(task.TaskTypeTranscription, payload)
	if err != nil {
		s.releaseClaim(ctx, jobID)
		return nil, NewJobServiceError("run_job", "failed to create task event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.releaseClaim(ctx, jobID)
		return nil, NewJobServiceError("run_job", "failed to request pipeline run", err)
	}

	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewJobServiceError("run_job", "failed to load claimed job", err)
	}

	s.logger.Info("pipeline run requested",
		"job_id", jobID,
		"event_id", event.ID)
	return job, nil
}

// releaseClaim reverts a claim whose run request never made it to the
// task layer, so the job can be run again instead of hanging in
// processing.
func (s *jobServiceImpl) releaseClaim(ctx context.Context, jobID uuid.UUID) {
	err := s.jobStore.CompareAndSwapStatus(ctx, jobID,
		domain.JobStatusProcessing, domain.JobStatusPending, "files uploaded, ready to process")
	if err != nil {
		s.logger.Error("failed to release job claim",
			"job_id", jobID,
			"error", err)
	}
}

// Status retrieves the current snapshot of a job.
func (s *jobServiceImpl) Status(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewJobServiceError("get_status", "failed to retrieve job", err)
	}
	return job, nil
}

// Results returns a completed job including its compiled document and
// per-image details.
func (s *jobServiceImpl) Results(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewJobServiceError("get_results", "failed to retrieve job", err)
	}

	if job.Status != domain.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job is %s", domain.ErrJobNotReady, job.Status)
	}

	return job, nil
}

// GenerateContent produces derivative content from a completed job's
// compiled document. Requested types are generated independently; the
// result reports per-type successes and failures, and successful
// artifacts are recorded on the job keyed by content type.
func (s *jobServiceImpl) GenerateContent(
	ctx context.Context,
	jobID uuid.UUID,
	types []domain.ContentType,
) (*content.Result, error) {
	job, err := s.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return nil, NewJobServiceError("generate_content", "failed to retrieve job", err)
	}

	if job.Status != domain.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job is %s", domain.ErrJobNotReady, job.Status)
	}

	result, err := s.dispatcher.Generate(ctx, job.ID.String(), job.CompiledText, types)
	if err != nil {
		return nil, NewJobServiceError("generate_content", "content generation rejected", err)
	}

	if len(result.Artifacts) > 0 {
		if job.Artifacts == nil {
			job.Artifacts = make(map[domain.ContentType]domain.Artifact, len(result.Artifacts))
		}
		for ct, artifact := range result.Artifacts {
			job.Artifacts[ct] = artifact
		}
		if err := s.jobStore.Update(ctx, job); err != nil {
			s.logger.Error("failed to record generated artifacts on job",
				"job_id", jobID,
				"error", err)
		}
	}

	return result, nil
}
