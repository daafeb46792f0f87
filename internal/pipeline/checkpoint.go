package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/exhibitlab/docent-api/internal/domain"
)

// FileCheckpointer writes results-so-far snapshots as JSON files named by
// a running count into a job-scoped directory. Snapshots are a recovery
// aid only; nothing in the pipeline reads them back.
type FileCheckpointer struct {
	dir string
}

// NewFileCheckpointer creates a checkpointer writing into dir.
func NewFileCheckpointer(dir string) *FileCheckpointer {
	return &FileCheckpointer{dir: dir}
}

// Save writes the full result list to backup_results_<count>.json.
func (c *FileCheckpointer) Save(results []domain.TranscriptionItem, count int) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("backup_results_%d.json", count))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", path, err)
	}

	return nil
}

// Ensure FileCheckpointer implements Checkpointer.
var _ Checkpointer = (*FileCheckpointer)(nil)
