package image

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ListImages returns the absolute paths of all supported image files
// directly inside dir, sorted lexicographically by filename. Processing
// order therefore matches upload naming (page_001, page_002, ...).
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !SupportedExtension(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}
