package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/exhibitlab/docent-api/internal/api/shared"
	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/image"
	"github.com/exhibitlab/docent-api/internal/redact"
	"github.com/exhibitlab/docent-api/internal/service"
)

// multipartMemoryLimit caps how much of a parsed upload is held in memory
// before spilling to temp files.
const multipartMemoryLimit = 32 << 20

// FileLocator resolves the on-disk paths of persisted job outputs for
// download handling. Implemented by pipeline.Outputs.
type FileLocator interface {
	CompiledPath(jobID string) string
	CompiledMarkdownPath(jobID string) string
	ResultsPath(jobID string) string
	ArtifactPath(jobID string, ct domain.ContentType) string
}

// downloadableFiles maps download type tags to locator lookups.
var downloadableFiles = map[string]func(FileLocator, string) string{
	"txt":  func(l FileLocator, id string) string { return l.CompiledPath(id) },
	"md":   func(l FileLocator, id string) string { return l.CompiledMarkdownPath(id) },
	"json": func(l FileLocator, id string) string { return l.ResultsPath(id) },
	"flashcards": func(l FileLocator, id string) string {
		return l.ArtifactPath(id, domain.ContentTypeFlashcards)
	},
	"infographic": func(l FileLocator, id string) string {
		return l.ArtifactPath(id, domain.ContentTypeInfographic)
	},
	"video_script": func(l FileLocator, id string) string {
		return l.ArtifactPath(id, domain.ContentTypeVideoScript)
	},
	"podcast": func(l FileLocator, id string) string {
		return l.ArtifactPath(id, domain.ContentTypePodcast)
	},
}

// JobHandler handles job-related HTTP requests.
type JobHandler struct {
	jobService     service.JobService
	locator        FileLocator
	uploadDir      string
	maxUploadBytes int64
}

// NewJobHandler creates a JobHandler. Uploaded files are stored under
// uploadDir, one subdirectory per upload; maxUploadBytes bounds the total
// request size.
func NewJobHandler(
	jobService service.JobService,
	locator FileLocator,
	uploadDir string,
	maxUploadBytes int64,
) *JobHandler {
	return &JobHandler{
		jobService:     jobService,
		locator:        locator,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadImages handles POST /api/upload requests. It accepts a multipart
// form with one or more files under the "files" field, stores them,
// registers a new job, and starts its transcription run.
func (h *JobHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Upload exceeds the %d byte limit", h.maxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds the %d byte limit", h.maxUploadBytes))
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "No files provided")
		return
	}

	for _, header := range files {
		if !image.SupportedExtension(header.Filename) {
			shared.RespondWithError(w, r, http.StatusBadRequest,
				fmt.Sprintf("Unsupported file type: %s", filepath.Base(header.Filename)))
			return
		}
	}

	dir := filepath.Join(h.uploadDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to store upload", err)
		return
	}

	for _, header := range files {
		if err := saveUploadedFile(header, filepath.Join(dir, filepath.Base(header.Filename))); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to store upload", err)
			return
		}
	}

	job, err := h.jobService.Submit(r.Context(), dir)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	// Uploading implies processing. A lost claim race means someone else
	// already started this job; any other run failure leaves the job
	// pending, where an explicit transcribe request can retry it.
	started, err := h.jobService.Run(r.Context(), job.ID)
	switch {
	case err == nil:
		job = started
	case errors.Is(err, domain.ErrInvalidStateTransition):
	default:
		slog.Warn("failed to start transcription after upload",
			"job_id", job.ID,
			"error", redact.Error(err))
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, jobToResponse(job))
}

// StartTranscription handles POST /api/transcribe/{jobID} requests. The
// pipeline run happens in the background; the response reports the claim.
func (h *JobHandler) StartTranscription(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromRequest(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.Run(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, jobToResponse(job))
}

// GetStatus handles GET /api/job/{jobID}/status requests.
func (h *JobHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromRequest(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.Status(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}

// GetResults handles GET /api/job/{jobID}/results requests. Only completed
// jobs have results.
func (h *JobHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromRequest(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.Results(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResultsResponse(job))
}

// GenerateContent handles POST /api/generate-content/{jobID} requests.
func (h *JobHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromRequest(w, r)
	if !ok {
		return
	}

	var req GenerateContentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	types := make([]domain.ContentType, 0, len(req.ContentTypes))
	for _, ct := range req.ContentTypes {
		types = append(types, domain.ContentType(ct))
	}

	result, err := h.jobService.GenerateContent(r.Context(), jobID, types)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resultToResponse(jobID.String(), result))
}

// DownloadFile handles GET /api/download/{jobID}/{fileType} requests,
// serving a persisted output file of a completed job.
func (h *JobHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobIDFromRequest(w, r)
	if !ok {
		return
	}

	fileType := chi.URLParam(r, "fileType")
	lookup, ok := downloadableFiles[fileType]
	if !ok {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			fmt.Sprintf("Unknown file type: %s", fileType))
		return
	}

	path := lookup(h.locator, jobID.String())
	if _, err := os.Stat(path); err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// jobIDFromRequest parses the jobID URL parameter, responding with 400 on
// malformed IDs.
func (h *JobHandler) jobIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return uuid.Nil, false
	}
	return jobID, true
}

// saveUploadedFile copies one multipart file to disk.
func saveUploadedFile(header *multipart.FileHeader, dst string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
