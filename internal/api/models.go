package api

import (
	"time"

	"github.com/exhibitlab/docent-api/internal/content"
	"github.com/exhibitlab/docent-api/internal/domain"
)

// JobResponse is the wire representation of a job snapshot.
type JobResponse struct {
	ID              string    `json:"job_id"`
	Status          string    `json:"status"`
	TotalImages     int       `json:"total_images"`
	ProcessedImages int       `json:"processed_images"`
	Progress        float64   `json:"progress"`
	Message         string    `json:"message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TranscriptionItemResponse is the wire representation of one per-image
// result.
type TranscriptionItemResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ResultsResponse extends the job snapshot with the compiled document and
// per-image details.
type ResultsResponse struct {
	JobResponse
	CompiledText string                      `json:"compiled_text"`
	Results      []TranscriptionItemResponse `json:"results"`
}

// GenerateContentRequest is the request body for content generation.
type GenerateContentRequest struct {
	ContentTypes []string `json:"content_types" validate:"required,min=1"`
}

// ArtifactResponse is the wire representation of one generated artifact.
type ArtifactResponse struct {
	Type        string               `json:"type"`
	Flashcards  *domain.FlashcardSet `json:"flashcards,omitempty"`
	Text        string               `json:"text,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// GenerateContentResponse reports the per-type outcome of a content
// generation request.
type GenerateContentResponse struct {
	JobID     string                      `json:"job_id"`
	Artifacts map[string]ArtifactResponse `json:"artifacts"`
	Failures  map[string]string           `json:"failures,omitempty"`
}

// jobToResponse converts a domain job to its wire representation.
func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:              job.ID.String(),
		Status:          string(job.Status),
		TotalImages:     job.TotalImages,
		ProcessedImages: job.ProcessedCount,
		Progress:        job.Progress(),
		Message:         job.Message,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

// jobToResultsResponse converts a completed job to the results payload.
func jobToResultsResponse(job *domain.Job) ResultsResponse {
	items := make([]TranscriptionItemResponse, 0, len(job.Results))
	for _, item := range job.Results {
		items = append(items, TranscriptionItemResponse{
			Filename: item.Filename,
			Text:     item.Text,
			Success:  item.Success,
			Error:    item.Error,
		})
	}

	return ResultsResponse{
		JobResponse:  jobToResponse(job),
		CompiledText: job.CompiledText,
		Results:      items,
	}
}

// resultToResponse converts a dispatcher result to the wire payload.
func resultToResponse(jobID string, result *content.Result) GenerateContentResponse {
	resp := GenerateContentResponse{
		JobID:     jobID,
		Artifacts: make(map[string]ArtifactResponse, len(result.Artifacts)),
	}

	for ct, artifact := range result.Artifacts {
		resp.Artifacts[string(ct)] = ArtifactResponse{
			Type:        string(artifact.Type),
			Flashcards:  artifact.Flashcards,
			Text:        artifact.Text,
			GeneratedAt: artifact.GeneratedAt,
		}
	}

	if len(result.Failures) > 0 {
		resp.Failures = make(map[string]string, len(result.Failures))
		for ct, err := range result.Failures {
			resp.Failures[string(ct)] = err.Error()
		}
	}

	return resp
}
