package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a transcription job.
type JobStatus string

// Possible job status values. Pending is the initial state; Completed and
// Failed are terminal.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Common validation errors for Job.
var (
	ErrEmptyJobID      = errors.New("job ID cannot be empty")
	ErrNoJobImages     = errors.New("job must contain at least one image")
	ErrNegativeCount   = errors.New("processed count cannot be negative")
	ErrCountOverflow   = errors.New("processed count cannot exceed total count")
	ErrMissingCompiled = errors.New("completed job must have compiled text")
)

// Job represents one batch-transcription request and its lifecycle state.
// The pipeline run that owns the job is its exclusive writer; readers only
// ever observe snapshots taken through the store.
type Job struct {
	ID             uuid.UUID                `json:"id"`
	Status         JobStatus                `json:"status"`
	SourceDir      string                   `json:"source_dir"`
	TotalImages    int                      `json:"total_images"`
	ProcessedCount int                      `json:"processed_images"`
	Results        []TranscriptionItem      `json:"results,omitempty"`
	CompiledText   string                   `json:"compiled_text,omitempty"`
	Artifacts      map[ContentType]Artifact `json:"artifacts,omitempty"`
	Message        string                   `json:"message,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// NewJob creates a new Job in the pending state for the given image source
// directory and image count. Returns an error if validation fails.
func NewJob(sourceDir string, totalImages int) (*Job, error) {
	job := &Job{
		ID:          uuid.New(),
		Status:      JobStatusPending,
		SourceDir:   sourceDir,
		TotalImages: totalImages,
		Message:     "files uploaded, ready to process",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks the Job's invariants. Returns an error if any field is
// inconsistent.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if j.TotalImages < 1 {
		return ErrNoJobImages
	}

	if j.ProcessedCount < 0 {
		return ErrNegativeCount
	}

	if j.ProcessedCount > j.TotalImages {
		return ErrCountOverflow
	}

	if j.Status == JobStatusCompleted && j.CompiledText == "" {
		return ErrMissingCompiled
	}

	return nil
}

// IsTerminal reports whether the job has reached a final state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Progress returns the completion percentage for status reporting.
func (j *Job) Progress() float64 {
	if j.TotalImages == 0 {
		return 0
	}
	return float64(j.ProcessedCount) / float64(j.TotalImages) * 100
}

// isValidJobStatus checks if the given status is a known JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
