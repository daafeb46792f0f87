package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exhibitlab/docent-api/internal/domain"
)

// generatedContentDir is the per-job subdirectory holding derived artifacts.
const generatedContentDir = "generated_content"

// artifactFilenames maps each content type to its on-disk name.
var artifactFilenames = map[domain.ContentType]string{
	domain.ContentTypeFlashcards:  "flashcards.json",
	domain.ContentTypeInfographic: "infographic.md",
	domain.ContentTypeVideoScript: "video_script.txt",
	domain.ContentTypePodcast:     "podcast_script.txt",
}

// Outputs writes job output files under a base directory, one
// subdirectory per job ID.
type Outputs struct {
	baseDir string
}

// NewOutputs creates an output writer rooted at baseDir.
func NewOutputs(baseDir string) *Outputs {
	return &Outputs{baseDir: baseDir}
}

// JobDir returns the output directory for the given job, creating it if
// necessary.
func (o *Outputs) JobDir(jobID string) (string, error) {
	dir := filepath.Join(o.baseDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}
	return dir, nil
}

// WriteCompiled persists the compiled document in both a plain-text and a
// structurally identical markdown rendering.
func (o *Outputs) WriteCompiled(jobID, content string) error {
	dir, err := o.JobDir(jobID)
	if err != nil {
		return err
	}

	for _, name := range []string{"transcription.txt", "transcription.md"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	return nil
}

// WriteResults persists the full per-item result list as JSON.
func (o *Outputs) WriteResults(jobID string, items []domain.TranscriptionItem) error {
	dir, err := o.JobDir(jobID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	path := filepath.Join(dir, "transcription_full_results.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// WriteArtifact persists a generated artifact under the job's
// generated_content directory. Flashcards are written as JSON plus a
// readable text rendering; narrative types are written verbatim.
func (o *Outputs) WriteArtifact(jobID string, artifact domain.Artifact) error {
	dir, err := o.contentDir(jobID)
	if err != nil {
		return err
	}

	name, ok := artifactFilenames[artifact.Type]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInvalidContentType, artifact.Type)
	}
	path := filepath.Join(dir, name)

	if artifact.Type == domain.ContentTypeFlashcards {
		data, err := json.MarshalIndent(artifact.Flashcards, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal flashcards: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		readable := renderFlashcards(artifact.Flashcards)
		txtPath := filepath.Join(dir, "flashcards.txt")
		if err := os.WriteFile(txtPath, []byte(readable), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", txtPath, err)
		}
		return nil
	}

	if err := os.WriteFile(path, []byte(artifact.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteRawFallback persists an unparseable model response so it is not
// lost when structured parsing fails.
func (o *Outputs) WriteRawFallback(jobID string, ct domain.ContentType, raw string) error {
	dir, err := o.contentDir(jobID)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, string(ct)+"_raw.txt")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ArtifactPath returns the on-disk path of a persisted artifact for
// download handling.
func (o *Outputs) ArtifactPath(jobID string, ct domain.ContentType) string {
	name := artifactFilenames[ct]
	return filepath.Join(o.baseDir, jobID, generatedContentDir, name)
}

// CompiledPath returns the on-disk path of the plain-text compiled
// document.
func (o *Outputs) CompiledPath(jobID string) string {
	return filepath.Join(o.baseDir, jobID, "transcription.txt")
}

// CompiledMarkdownPath returns the on-disk path of the markdown rendering
// of the compiled document.
func (o *Outputs) CompiledMarkdownPath(jobID string) string {
	return filepath.Join(o.baseDir, jobID, "transcription.md")
}

// ResultsPath returns the on-disk path of the per-item result JSON.
func (o *Outputs) ResultsPath(jobID string) string {
	return filepath.Join(o.baseDir, jobID, "transcription_full_results.json")
}

func (o *Outputs) contentDir(jobID string) (string, error) {
	dir := filepath.Join(o.baseDir, jobID, generatedContentDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}
	return dir, nil
}

// renderFlashcards formats a flashcard set as readable study text.
func renderFlashcards(set *domain.FlashcardSet) string {
	var b strings.Builder
	b.WriteString("FLASHCARDS\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	if set == nil {
		return b.String()
	}

	for i, card := range set.Flashcards {
		category := card.Category
		if category == "" {
			category = "General"
		}
		fmt.Fprintf(&b, "Card %d - %s\n", i+1, category)
		fmt.Fprintf(&b, "Q: %s\n", card.Question)
		fmt.Fprintf(&b, "A: %s\n\n", card.Answer)
	}

	return b.String()
}
