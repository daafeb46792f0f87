package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/exhibitlab/docent-api/internal/config"
	"github.com/exhibitlab/docent-api/internal/content"
	"github.com/exhibitlab/docent-api/internal/events"
	"github.com/exhibitlab/docent-api/internal/image"
	"github.com/exhibitlab/docent-api/internal/pipeline"
	"github.com/exhibitlab/docent-api/internal/platform/gemini"
	"github.com/exhibitlab/docent-api/internal/service"
	"github.com/exhibitlab/docent-api/internal/store"
	"github.com/exhibitlab/docent-api/internal/task"
)

// application holds the wired dependencies of a running server.
type application struct {
	config     *config.Config
	logger     *slog.Logger
	jobService service.JobService
	outputs    *pipeline.Outputs
	taskRunner *task.TaskRunner
}

// buildApplication wires all components: store, model client, pipeline,
// task runner, event plumbing, and the job service.
func buildApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	for _, dir := range []string{cfg.Storage.UploadDir, cfg.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	jobStore := store.NewMemoryJobStore()

	generator, err := gemini.NewGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	normalizer := image.NewNormalizer(cfg.Image, logger)
	outputs := pipeline.NewOutputs(cfg.Storage.OutputDir)

	engineFor := func(jobID uuid.UUID) task.TranscriptionEngine {
		checkpointDir := filepath.Join(cfg.Storage.OutputDir, jobID.String())
		return pipeline.NewEngine(
			normalizer,
			generator,
			pipeline.NewFileCheckpointer(checkpointDir),
			cfg.Pipeline.CheckpointEvery,
			logger,
		)
	}

	runner := task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Pipeline.WorkerCount,
		QueueSize:   cfg.Pipeline.QueueSize,
	}, logger)

	factory := task.NewTranscriptionTaskFactory(jobStore, engineFor, outputs, logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(factory, runner, logger))

	dispatcher := content.NewDispatcher(generator, outputs, cfg.LLM.PromptCharLimit, logger)

	jobService, err := service.NewJobService(jobStore, emitter, dispatcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}

	return &application{
		config:     cfg,
		logger:     logger,
		jobService: jobService,
		outputs:    outputs,
		taskRunner: runner,
	}, nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.taskRunner.Stop()
}
