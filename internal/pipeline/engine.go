package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/exhibitlab/docent-api/internal/domain"
	"github.com/exhibitlab/docent-api/internal/generation"
)

// ErrNoImages is returned when a batch contains no images to transcribe.
var ErrNoImages = errors.New("no images to transcribe")

// Normalizer converts a raw image file into a transmission-ready payload.
type Normalizer interface {
	Normalize(path string) (generation.ImagePayload, error)
}

// Checkpointer persists results-so-far as a recovery aid.
type Checkpointer interface {
	// Save writes the full list of results produced so far. The count is
	// the number of items processed at the time of the checkpoint and is
	// used to name the snapshot.
	Save(results []domain.TranscriptionItem, count int) error
}

// ProgressFunc is invoked after each processed item with the item and the
// number of items processed so far.
type ProgressFunc func(item domain.TranscriptionItem, processed int)

// Engine drives the external transcription call for an ordered batch of
// images. Per-item failures are recorded in the result list and never abort
// the batch; the batch itself only fails when there is nothing to run or
// the context is cancelled.
type Engine struct {
	normalizer      Normalizer
	generator       generation.Generator
	checkpointer    Checkpointer
	checkpointEvery int
	logger          *slog.Logger
}

// NewEngine creates a transcription engine. checkpointEvery is the number
// of processed items between checkpoints; values below 1 disable
// checkpointing.
func NewEngine(
	normalizer Normalizer,
	generator generation.Generator,
	checkpointer Checkpointer,
	checkpointEvery int,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		normalizer:      normalizer,
		generator:       generator,
		checkpointer:    checkpointer,
		checkpointEvery: checkpointEvery,
		logger:          logger.With("component", "transcription_engine"),
	}
}

// TranscribeAll processes the given image paths in order and returns one
// TranscriptionItem per path, in the same order. progress may be nil.
func (e *Engine) TranscribeAll(
	ctx context.Context,
	paths []string,
	progress ProgressFunc,
) ([]domain.TranscriptionItem, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}

	results := make([]domain.TranscriptionItem, 0, len(paths))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("batch cancelled after %d of %d images: %w",
				i, len(paths), err)
		}

		item := e.transcribeOne(ctx, path)
		results = append(results, item)

		e.logger.Info("processed image",
			"file", item.Filename,
			"success", item.Success,
			"progress", fmt.Sprintf("%d/%d", i+1, len(paths)))

		if progress != nil {
			progress(item, i+1)
		}

		if e.checkpointEvery > 0 && (i+1)%e.checkpointEvery == 0 {
			e.checkpoint(results, i+1)
		}
	}

	return results, nil
}

// transcribeOne handles a single image. Any failure, from normalization
// through the service call, is captured in the returned item.
func (e *Engine) transcribeOne(ctx context.Context, path string) domain.TranscriptionItem {
	filename := filepath.Base(path)

	payload, err := e.normalizer.Normalize(path)
	if err != nil {
		e.logger.Warn("failed to prepare image", "file", filename, "error", err)
		return domain.TranscriptionItem{
			Filename: filename,
			Success:  false,
			Error:    err.Error(),
		}
	}

	text, err := e.generator.TranscribeImage(ctx, payload)
	if err != nil {
		e.logger.Warn("failed to transcribe image", "file", filename, "error", err)
		return domain.TranscriptionItem{
			Filename: filename,
			Success:  false,
			Error:    err.Error(),
		}
	}

	return domain.TranscriptionItem{
		Filename: filename,
		Text:     text,
		Success:  true,
	}
}

// checkpoint persists results-so-far. Checkpointing is best-effort; write
// failures are logged and otherwise ignored.
func (e *Engine) checkpoint(results []domain.TranscriptionItem, count int) {
	if e.checkpointer == nil {
		return
	}

	if err := e.checkpointer.Save(results, count); err != nil {
		e.logger.Warn("failed to write checkpoint", "count", count, "error", err)
		return
	}

	e.logger.Debug("wrote checkpoint", "count", count)
}
