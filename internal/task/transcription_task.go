package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/image"
	"github.com/exhibitlab/docent-api/internal/pipeline"
	"github.com/exhibitlab/docent-api/internal/store"
)

// Common construction errors.
var (
	ErrNilJobStore     = errors.New("job store cannot be nil")
	ErrNilEngine       = errors.New("transcription engine cannot be nil")
	ErrNilOutputWriter = errors.New("output writer cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyTaskJobID  = errors.New("job ID cannot be empty")
)

// TranscriptionEngine runs a batch of images through normalization and
// model transcription. Implemented by pipeline.Engine.
type TranscriptionEngine interface {
	TranscribeAll(
		ctx context.Context,
		paths []string,
		progress pipeline.ProgressFunc,
	) ([]domain.TranscriptionItem, error)
}

// OutputWriter persists the final documents of a completed job.
// Implemented by pipeline.Outputs.
type OutputWriter interface {
	WriteCompiled(jobID, content string) error
	WriteResults(jobID string, items []domain.TranscriptionItem) error
}

// transcriptionPayload is the serialized data stored in the task.
type transcriptionPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// TranscriptionTask drives one claimed job through the full pipeline:
// list images, transcribe them in order with live progress updates,
// compile the document, persist outputs, and move the job to a terminal
// state. Whatever happens, the job never stays in processing after
// Execute returns.
type TranscriptionTask struct {
	id       uuid.UUID
	jobID    uuid.UUID
	jobStore store.JobStore
	engine   TranscriptionEngine
	outputs  OutputWriter
	logger   *slog.Logger
	status   TaskStatus
}

// NewTranscriptionTask creates a transcription task for the given job.
func NewTranscriptionTask(
	jobID uuid.UUID,
	jobStore store.JobStore,
	engine TranscriptionEngine,
	outputs OutputWriter,
	logger *slog.Logger,
) (*TranscriptionTask, error) {
	if jobStore == nil {
		return nil, ErrNilJobStore
	}
	if engine == nil {
		return nil, ErrNilEngine
	}
	if outputs == nil {
		return nil, ErrNilOutputWriter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if jobID == uuid.Nil {
		return nil, ErrEmptyTaskJobID
	}

	return &TranscriptionTask{
		id:       uuid.New(),
		jobID:    jobID,
		jobStore: jobStore,
		engine:   engine,
		outputs:  outputs,
		logger:   logger.With("task_type", TaskTypeTranscription, "job_id", jobID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *TranscriptionTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *TranscriptionTask) Type() string {
	return TaskTypeTranscription
}

// Payload returns the task data as a byte slice.
func (t *TranscriptionTask) Payload() []byte {
	data, err := json.Marshal(transcriptionPayload{JobID: t.jobID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status.
func (t *TranscriptionTask) Status() TaskStatus {
	return t.status
}

// Execute runs the transcription pipeline for the job. The job must
// already be in the processing state (claimed by the submitting service);
// Execute always leaves it completed or failed.
func (t *TranscriptionTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting transcription task")

	job, err := t.jobStore.GetByID(ctx, t.jobID)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to load job: %w", err)
	}

	if job.Status != domain.JobStatusProcessing {
		t.status = TaskStatusFailed
		return fmt.Errorf("%w: job is %s, expected %s",
			domain.ErrInvalidStateTransition, job.Status, domain.JobStatusProcessing)
	}

	paths, err := image.ListImages(job.SourceDir)
	if err != nil {
		return t.fail(ctx, job, fmt.Sprintf("failed to list images: %v", err))
	}
	if len(paths) == 0 {
		return t.fail(ctx, job, "no supported images found in upload directory")
	}

	items, err := t.engine.TranscribeAll(ctx, paths, t.progressFunc(ctx, job))
	if err != nil {
		// Keep whatever was transcribed before the failure.
		job.Results = items
		job.ProcessedCount = len(items)
		return t.fail(ctx, job, fmt.Sprintf("transcription aborted: %v", err))
	}

	compiled := pipeline.Compile(items, "Image Transcription Results", time.Now().UTC())

	jobID := job.ID.String()
	if err := t.outputs.WriteCompiled(jobID, compiled); err != nil {
		return t.fail(ctx, job, fmt.Sprintf("failed to write compiled document: %v", err))
	}
	if err := t.outputs.WriteResults(jobID, items); err != nil {
		return t.fail(ctx, job, fmt.Sprintf("failed to write result details: %v", err))
	}

	job.Status = domain.JobStatusCompleted
	job.Results = items
	job.ProcessedCount = len(items)
	job.CompiledText = compiled
	job.Message = fmt.Sprintf("transcription complete: %d/%d images successful",
		domain.SuccessCount(items), len(items))

	if err := t.jobStore.Update(ctx, job); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("transcription task completed",
		"total", len(items),
		"successful", domain.SuccessCount(items))
	return nil
}

// progressFunc returns the callback the engine invokes after each image.
// Updates are best effort; a failed write never interrupts the batch.
func (t *TranscriptionTask) progressFunc(ctx context.Context, job *domain.Job) pipeline.ProgressFunc {
	return func(item domain.TranscriptionItem, processed int) {
		job.Results = append(job.Results, item)
		job.ProcessedCount = processed
		job.Message = fmt.Sprintf("processing images: %d/%d", processed, job.TotalImages)

		if err := t.jobStore.Update(ctx, job); err != nil {
			t.logger.Warn("failed to persist progress update",
				"processed", processed,
				"error", err)
		}
	}
}

// fail moves the job to the failed state with the given message and marks
// the task failed. The returned error describes the original problem.
func (t *TranscriptionTask) fail(ctx context.Context, job *domain.Job, message string) error {
	t.status = TaskStatusFailed

	job.Status = domain.JobStatusFailed
	job.Message = message

	// The status write must survive the cancellation that may have caused
	// the failure, or the job would be stuck in processing forever.
	if err := t.jobStore.Update(context.WithoutCancel(ctx), job); err != nil {
		t.logger.Error("failed to mark job failed",
			"message", message,
			"error", err)
	}

	return errors.New(message)
}
