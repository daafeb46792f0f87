// Package main implements the entry point for the docent-api server,
// which turns uploaded exhibit photos into compiled transcription
// documents and derived study content via LLM inference.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/exhibitlab/docent-api/internal/config"
	"github.com/exhibitlab/docent-api/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server)

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"upload_dir", cfg.Storage.UploadDir,
		"output_dir", cfg.Storage.OutputDir,
		"model", cfg.LLM.ModelName)

	ctx := context.Background()

	app, err := buildApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	app.taskRunner.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
