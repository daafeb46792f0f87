package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/exhibitlab/docent-api/internal/config"
	"github.com/exhibitlab/docent-api/internal/generation"
)

// transcriptionInstruction is the fixed instruction sent alongside every
// image. It asks for all visible text in natural reading order regardless
// of orientation or layout.
const transcriptionInstruction = `Please transcribe all the text you can see in this image, regardless of orientation (portrait, landscape, or rotated).

Be thorough and accurate. If there are:
- Headings or titles, preserve them
- Bullet points or lists, maintain the structure
- Tables or structured data, format them clearly
- Multiple columns, transcribe left to right, top to bottom
- Text in different orientations, transcribe it in reading order
- Any diagrams, charts, or images with labels, include the labels
- Handwritten notes or annotations, include those too

If the image is portrait/vertical, transcribe from top to bottom.
If the image is landscape/horizontal, transcribe left to right, top to bottom.

Please output just the transcribed text without any preamble or commentary.`

// Generator implements the generation.Generator interface using Google's
// Gemini API.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewGenerator creates a new Gemini-backed Generator.
//
// Returns an error wrapping generation.ErrInvalidConfig if the API key or
// model name is missing, or if the client cannot be constructed.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With("component", "gemini_generator"),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// TranscribeImage extracts all visible text from the given image in
// natural reading order.
func (g *Generator) TranscribeImage(ctx context.Context, image generation.ImagePayload) (string, error) {
	if len(image.Data) == 0 {
		return "", ErrEmptyImage
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(image.Data, image.MIMEType),
		genai.NewPartFromText(transcriptionInstruction),
	}

	return g.callWithRetry(ctx, parts)
}

// GenerateText sends a free-form prompt to the model and returns the
// generated text verbatim.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}

	return g.callWithRetry(ctx, parts)
}

// callWithRetry makes a Gemini API call with exponential backoff retry for
// transient errors. Permanent errors (safety blocks, empty responses) are
// returned immediately without retrying.
func (g *Generator) callWithRetry(ctx context.Context, parts []*genai.Part) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)

		var text string
		transient := false
		if err != nil {
			// Transport and service errors are assumed transient.
			transient = true
			err = fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		} else {
			text, err = extractText(resp)
		}

		if err == nil {
			g.logger.DebugContext(ctx, "Gemini API call successful",
				"attempt", attemptNum,
				"response_length", len(text))
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// extractText validates a Gemini response and concatenates its text parts.
// Validation failures map to the generation package's permanent errors.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response stopped by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}

	if text == "" {
		return "", fmt.Errorf("%w: response contains no text", generation.ErrInvalidResponse)
	}

	return text, nil
}

// Ensure Generator implements generation.Generator.
var _ generation.Generator = (*Generator)(nil)
