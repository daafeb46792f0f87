package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exhibitlab/docent-api/internal/content"
	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/service"
)

// fakeJobService scripts each JobService operation.
type fakeJobService struct {
	submitJob  *domain.Job
	submitErr  error
	runJob     *domain.Job
	runErr     error
	statusJob  *domain.Job
	statusErr  error
	resultsJob *domain.Job
	resultsErr error
	genResult  *content.Result
	genErr     error
	gotTypes   []domain.ContentType
	gotDir     string
	runCalls   int
	gotRunID   uuid.UUID
}

func (s *fakeJobService) Submit(_ context.Context, sourceDir string) (*domain.Job, error) {
	s.gotDir = sourceDir
	return s.submitJob, s.submitErr
}

func (s *fakeJobService) Run(_ context.Context, jobID uuid.UUID) (*domain.Job, error) {
	s.runCalls++
	s.gotRunID = jobID
	return s.runJob, s.runErr
}

func (s *fakeJobService) Status(context.Context, uuid.UUID) (*domain.Job, error) {
	return s.statusJob, s.statusErr
}

func (s *fakeJobService) Results(context.Context, uuid.UUID) (*domain.Job, error) {
	return s.resultsJob, s.resultsErr
}

func (s *fakeJobService) GenerateContent(
	_ context.Context,
	_ uuid.UUID,
	types []domain.ContentType,
) (*content.Result, error) {
	s.gotTypes = types
	return s.genResult, s.genErr
}

// fakeLocator serves files from a fixed directory regardless of type.
type fakeLocator struct {
	dir string
}

func (l fakeLocator) CompiledPath(jobID string) string {
	return filepath.Join(l.dir, jobID, "transcription.txt")
}

func (l fakeLocator) CompiledMarkdownPath(jobID string) string {
	return filepath.Join(l.dir, jobID, "transcription.md")
}

func (l fakeLocator) ResultsPath(jobID string) string {
	return filepath.Join(l.dir, jobID, "transcription_full_results.json")
}

func (l fakeLocator) ArtifactPath(jobID string, ct domain.ContentType) string {
	return filepath.Join(l.dir, jobID, string(ct))
}

func testRouter(handler *JobHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", handler.UploadImages)
		r.Post("/transcribe/{jobID}", handler.StartTranscription)
		r.Get("/job/{jobID}/status", handler.GetStatus)
		r.Get("/job/{jobID}/results", handler.GetResults)
		r.Post("/generate-content/{jobID}", handler.GenerateContent)
		r.Get("/download/{jobID}/{fileType}", handler.DownloadFile)
	})
	return r
}

func sampleJob(t *testing.T, status domain.JobStatus) *domain.Job {
	t.Helper()
	job, err := domain.NewJob("/uploads/abc", 3)
	require.NoError(t, err)
	job.Status = status
	if status == domain.JobStatusCompleted {
		job.ProcessedCount = 3
		job.CompiledText = "# Image Transcription Results\ncompiled"
		job.Results = []domain.TranscriptionItem{
			{Filename: "page_001.jpg", Text: "first page", Success: true},
			{Filename: "page_002.jpg", Success: false, Error: "unreadable"},
			{Filename: "page_003.jpg", Text: "third page", Success: true},
		}
	}
	return job
}

// multipartBody builds a multipart form with the given filenames, each
// holding a small payload under the "files" field.
func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, "image bytes")
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadImages(t *testing.T) {
	t.Parallel()

	t.Run("valid upload creates a job and starts its run", func(t *testing.T) {
		t.Parallel()

		submitted := sampleJob(t, domain.JobStatusPending)
		started := *submitted
		started.Status = domain.JobStatusProcessing
		svc := &fakeJobService{submitJob: submitted, runJob: &started}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body, contentType := multipartBody(t, "page_001.jpg", "page_002.png")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp JobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "processing", resp.Status)
		assert.Equal(t, 3, resp.TotalImages)

		// Upload completion requested exactly one run for the new job.
		assert.Equal(t, 1, svc.runCalls)
		assert.Equal(t, submitted.ID, svc.gotRunID)

		// The uploaded files landed in the directory handed to the service.
		entries, err := os.ReadDir(svc.gotDir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("failed run still reports the pending job", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{
			submitJob: sampleJob(t, domain.JobStatusPending),
			runErr:    errors.New("task queue is full"),
		}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body, contentType := multipartBody(t, "page_001.jpg")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp JobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, 1, svc.runCalls)
	})

	t.Run("unsupported extension is rejected", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body, contentType := multipartBody(t, "page_001.jpg", "notes.pdf")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "notes.pdf")
		assert.Empty(t, svc.gotDir, "nothing reaches the service")
	})

	t.Run("empty form is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body, contentType := multipartBody(t)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized upload is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: t.TempDir()}, t.TempDir(), 64)
		router := testRouter(handler)

		body, contentType := multipartBody(t, "page_001.jpg")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestStartTranscription(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{runJob: sampleJob(t, domain.JobStatusProcessing)}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodPost, "/api/transcribe/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp JobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "processing", resp.Status)
	})

	t.Run("second run conflicts", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{
			runErr: fmt.Errorf("%w: job is processing, expected pending",
				domain.ErrInvalidStateTransition),
		}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodPost, "/api/transcribe/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed job ID", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodPost, "/api/transcribe/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	t.Run("reports progress", func(t *testing.T) {
		t.Parallel()

		job := sampleJob(t, domain.JobStatusProcessing)
		job.ProcessedCount = 1
		svc := &fakeJobService{statusJob: job}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/job/"+uuid.NewString()+"/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp JobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.ProcessedImages)
		assert.InDelta(t, 33.33, resp.Progress, 0.01)
	})

	t.Run("unknown job", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{statusErr: service.ErrJobNotFound}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/job/"+uuid.NewString()+"/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetResults(t *testing.T) {
	t.Parallel()

	t.Run("completed job", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{resultsJob: sampleJob(t, domain.JobStatusCompleted)}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/job/"+uuid.NewString()+"/results", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ResultsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.CompiledText, "compiled")
		require.Len(t, resp.Results, 3)
		assert.False(t, resp.Results[1].Success)
		assert.Equal(t, "unreadable", resp.Results[1].Error)
	})

	t.Run("job not ready", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{
			resultsErr: fmt.Errorf("%w: job is processing", domain.ErrJobNotReady),
		}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/job/"+uuid.NewString()+"/results", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGenerateContent(t *testing.T) {
	t.Parallel()

	t.Run("returns artifacts and failures", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{genResult: &content.Result{
			Artifacts: map[domain.ContentType]domain.Artifact{
				domain.ContentTypeFlashcards: {
					Type: domain.ContentTypeFlashcards,
					Flashcards: &domain.FlashcardSet{Flashcards: []domain.Flashcard{
						{Question: "Q", Answer: "A"},
					}},
				},
			},
			Failures: map[domain.ContentType]error{
				domain.ContentTypePodcast: fmt.Errorf("model overloaded"),
			},
		}}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body := strings.NewReader(`{"content_types": ["flashcards", "podcast"]}`)
		req := httptest.NewRequest(http.MethodPost, "/api/generate-content/"+uuid.NewString(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t,
			[]domain.ContentType{domain.ContentTypeFlashcards, domain.ContentTypePodcast},
			svc.gotTypes)

		var resp GenerateContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Artifacts, "flashcards")
		assert.Contains(t, resp.Failures, "podcast")
	})

	t.Run("empty content types", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body := strings.NewReader(`{"content_types": []}`)
		req := httptest.NewRequest(http.MethodPost, "/api/generate-content/"+uuid.NewString(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown content type maps to bad request", func(t *testing.T) {
		t.Parallel()

		svc := &fakeJobService{
			genErr: fmt.Errorf("%w: haiku", domain.ErrInvalidContentType),
		}
		handler := NewJobHandler(svc, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		body := strings.NewReader(`{"content_types": ["haiku"]}`)
		req := httptest.NewRequest(http.MethodPost, "/api/generate-content/"+uuid.NewString(), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDownloadFile(t *testing.T) {
	t.Parallel()

	t.Run("serves a persisted file", func(t *testing.T) {
		t.Parallel()

		outDir := t.TempDir()
		jobID := uuid.NewString()
		require.NoError(t, os.MkdirAll(filepath.Join(outDir, jobID), 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(outDir, jobID, "transcription.txt"),
			[]byte("compiled document"), 0o644))

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: outDir}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/download/"+jobID+"/txt", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "compiled document", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "transcription.txt")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet,
			"/api/download/"+uuid.NewString()+"/txt", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown file type", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeJobService{}, fakeLocator{dir: t.TempDir()}, t.TempDir(), 1<<20)
		router := testRouter(handler)

		req := httptest.NewRequest(http.MethodGet,
			"/api/download/"+uuid.NewString()+"/exe", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
