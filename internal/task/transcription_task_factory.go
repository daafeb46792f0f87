package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/exhibitlab/docent-api/internal/store"
)

// EngineFactory builds the transcription engine for one job. Engines are
// per-job so checkpoint files from concurrent jobs land in separate
// directories.
type EngineFactory func(jobID uuid.UUID) TranscriptionEngine

// TranscriptionTaskFactory creates TranscriptionTask instances with a
// fixed set of pipeline dependencies.
type TranscriptionTaskFactory struct {
	jobStore  store.JobStore
	engineFor EngineFactory
	outputs   OutputWriter
	logger    *slog.Logger
}

// NewTranscriptionTaskFactory creates a factory for transcription tasks.
func NewTranscriptionTaskFactory(
	jobStore store.JobStore,
	engineFor EngineFactory,
	outputs OutputWriter,
	logger *slog.Logger,
) *TranscriptionTaskFactory {
	return &TranscriptionTaskFactory{
		jobStore:  jobStore,
		engineFor: engineFor,
		outputs:   outputs,
		logger:    logger.With("component", "transcription_task_factory"),
	}
}

// CreateTask creates a new TranscriptionTask for the specified job.
func (f *TranscriptionTaskFactory) CreateTask(jobID uuid.UUID) (Task, error) {
	return NewTranscriptionTask(jobID, f.jobStore, f.engineFor(jobID), f.outputs, f.logger)
}
