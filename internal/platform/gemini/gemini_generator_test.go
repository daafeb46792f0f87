package gemini

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/exhibitlab/docent-api/internal/config"
	"github.com/exhibitlab/docent-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestNewGeneratorValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  config.LLMConfig
	}{
		{
			name: "missing API key",
			cfg:  config.LLMConfig{ModelName: "gemini-2.0-flash"},
		},
		{
			name: "missing model name",
			cfg:  config.LLMConfig{GeminiAPIKey: "test-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gen, err := NewGenerator(ctx, testLogger(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, gen)
			assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		})
	}

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		gen, err := NewGenerator(ctx, nil, config.LLMConfig{
			GeminiAPIKey: "test-key",
			ModelName:    "gemini-2.0-flash",
		})
		require.Error(t, err)
		assert.Nil(t, gen)
	})
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		wantText string
		wantErr  error
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "safety blocked",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{FinishReason: genai.FinishReasonSafety},
				},
			},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name: "nil content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "empty text",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []*genai.Part{{Text: ""}}}},
				},
			},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "concatenates parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{Parts: []*genai.Part{
						{Text: "first "},
						{Text: "second"},
					}}},
				},
			},
			wantText: "first second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text, err := extractText(tt.resp)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestGeneratorInputValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Input validation happens before any network call, so a zero-value
	// generator is sufficient here.
	g := &Generator{logger: testLogger()}

	_, err := g.GenerateText(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)

	_, err = g.TranscribeImage(ctx, generation.ImagePayload{})
	assert.ErrorIs(t, err, ErrEmptyImage)
}
