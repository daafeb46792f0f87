package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/generation"
)

// ArtifactSink persists generated artifacts and raw fallbacks for a job.
// The pipeline's output writer implements this.
type ArtifactSink interface {
	WriteArtifact(jobID string, artifact domain.Artifact) error
	WriteRawFallback(jobID string, ct domain.ContentType, raw string) error
}

// Result holds the outcome of one content generation request. Artifacts
// contains only the types that succeeded; Failures records the per-type
// errors for the rest.
type Result struct {
	Artifacts map[domain.ContentType]domain.Artifact
	Failures  map[domain.ContentType]error
}

// Dispatcher generates derivative content from compiled transcription
// text, one independent inference call per requested content type.
type Dispatcher struct {
	generator   generation.Generator
	sink        ArtifactSink
	promptLimit int
	logger      *slog.Logger
	now         func() time.Time
}

// NewDispatcher creates a content dispatcher. promptLimit bounds the
// compiled-text prefix embedded in each prompt.
func NewDispatcher(
	generator generation.Generator,
	sink ArtifactSink,
	promptLimit int,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		generator:   generator,
		sink:        sink,
		promptLimit: promptLimit,
		logger:      logger.With("component", "content_dispatcher"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Generate produces one artifact per requested content type from the given
// compiled text. Types are processed independently: a failure in one is
// recorded in the result and never affects the others. An error is
// returned only when the request itself is unusable (no types, or an
// unknown type tag).
func (d *Dispatcher) Generate(
	ctx context.Context,
	jobID string,
	compiledText string,
	types []domain.ContentType,
) (*Result, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: no content types requested", domain.ErrValidation)
	}

	for _, ct := range types {
		if !domain.IsValidContentType(ct) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidContentType, ct)
		}
	}

	result := &Result{
		Artifacts: make(map[domain.ContentType]domain.Artifact, len(types)),
		Failures:  make(map[domain.ContentType]error),
	}

	for _, ct := range types {
		artifact, err := d.generateOne(ctx, jobID, compiledText, ct)
		if err != nil {
			d.logger.Warn("content generation failed for type",
				"job_id", jobID,
				"content_type", ct,
				"error", err)
			result.Failures[ct] = err
			continue
		}

		result.Artifacts[ct] = artifact
		d.logger.Info("generated content",
			"job_id", jobID,
			"content_type", ct)
	}

	return result, nil
}

// generateOne runs the full prompt → inference → parse → persist sequence
// for a single content type.
func (d *Dispatcher) generateOne(
	ctx context.Context,
	jobID string,
	compiledText string,
	ct domain.ContentType,
) (domain.Artifact, error) {
	prompt, err := buildPrompt(ct, compiledText, d.promptLimit)
	if err != nil {
		return domain.Artifact{}, err
	}

	response, err := d.generator.GenerateText(ctx, prompt)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("inference call failed: %w", err)
	}

	artifact := domain.Artifact{
		Type:        ct,
		GeneratedAt: d.now(),
	}

	if ct == domain.ContentTypeFlashcards {
		set, err := parseFlashcards(response)
		if err != nil {
			// Keep the raw response so a human can salvage it.
			if saveErr := d.sink.WriteRawFallback(jobID, ct, response); saveErr != nil {
				d.logger.Warn("failed to persist raw fallback",
					"job_id", jobID,
					"content_type", ct,
					"error", saveErr)
			}
			return domain.Artifact{}, err
		}
		artifact.Flashcards = set
	} else {
		artifact.Text = response
	}

	if err := d.sink.WriteArtifact(jobID, artifact); err != nil {
		return domain.Artifact{}, fmt.Errorf("failed to persist artifact: %w", err)
	}

	return artifact, nil
}

// parseFlashcards interprets a model response as a flashcard set,
// tolerating a fenced code block around the JSON payload.
func parseFlashcards(response string) (*domain.FlashcardSet, error) {
	payload := ExtractFencedBlock(response)

	var set domain.FlashcardSet
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		return nil, fmt.Errorf("%w: flashcards are not valid JSON: %v",
			domain.ErrMalformedModelOutput, err)
	}

	if len(set.Flashcards) == 0 {
		return nil, fmt.Errorf("%w: response contains no flashcards",
			domain.ErrMalformedModelOutput)
	}

	return &set, nil
}
