package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type identifiers.
const (
	// TaskTypeTranscription runs the full batch transcription pipeline
	// for one job.
	TaskTypeTranscription = "transcription"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the task data as a byte slice.
	Payload() []byte

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel so
// workers can consume tasks without the ability to enqueue.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue so services
// can enqueue tasks for processing.
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue. Returns an error if the queue
	// is full or closed.
	Enqueue(task Task) error

	// Close closes the queue, preventing further submission.
	Close()
}
