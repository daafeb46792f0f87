package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// TaskRunnerConfig holds configuration for the task runner.
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size of the in-memory task queue.
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable
// defaults.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing with a fixed pool of
// workers draining a bounded queue. Tasks live only in memory; work in
// flight when the process stops is lost, and the tasks that own jobs are
// responsible for never leaving them in a non-terminal state.
type TaskRunner struct {
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a TaskRunner with its own queue.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "task_runner"),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler replaces the default log-only error handler.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit adds a new task to the queue.
func (r *TaskRunner) Submit(_ context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	r.logger.Info("task submitted",
		"task_id", task.ID(),
		"task_type", task.Type())
	return nil
}

// Start launches the worker pool.
func (r *TaskRunner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.logger.Info("task runner started", "worker_count", r.config.WorkerCount)
}

// Stop shuts the runner down: no further submissions are accepted, queued
// tasks are drained, and in-flight tasks run to completion.
func (r *TaskRunner) Stop() {
	r.queue.Close()
	r.wg.Wait()
	r.cancelFunc()
	r.logger.Info("task runner stopped")
}

// worker drains the queue until it is closed or the runner context is
// cancelled.
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			r.processTask(task, id)
		}
	}
}

// processTask executes a single task and routes any failure through the
// error handler.
func (r *TaskRunner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	if err := task.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed")
}
