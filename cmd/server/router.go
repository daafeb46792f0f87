package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/exhibitlab/docent-api/internal/api"
	apiMiddleware "github.com/exhibitlab/docent-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	jobHandler := api.NewJobHandler(
		app.jobService,
		app.outputs,
		app.config.Storage.UploadDir,
		app.config.Storage.MaxUploadBytes,
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", jobHandler.UploadImages)
		r.Post("/transcribe/{jobID}", jobHandler.StartTranscription)
		r.Get("/job/{jobID}/status", jobHandler.GetStatus)
		r.Get("/job/{jobID}/results", jobHandler.GetResults)
		r.Post("/generate-content/{jobID}", jobHandler.GenerateContent)
		r.Get("/download/{jobID}/{fileType}", jobHandler.DownloadFile)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
