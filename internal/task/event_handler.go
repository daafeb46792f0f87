package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/exhibitlab/docent-api/internal/events"
)

// TaskFactory creates tasks for a job. Implemented by
// TranscriptionTaskFactory.
type TaskFactory interface {
	CreateTask(jobID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution. Implemented by
// TaskRunner.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler bridges the event layer and the task runner:
// it turns TaskRequestEvents into tasks and submits them for execution.
type TaskFactoryEventHandler struct {
	factory   TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates an event handler that builds tasks
// with the given factory and submits them to the given runner.
func NewTaskFactoryEventHandler(
	factory TaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent creates and submits a task for transcription request
// events; events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeTranscription {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		JobID string `json:"job_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("invalid job ID %q: %w", payload.JobID, err)
	}

	t, err := h.factory.CreateTask(jobID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, t); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", t.ID(),
		"job_id", jobID,
		"event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
