package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnana997/blendmeta/pkg/components"
	"github.com/gnana997/blendmeta/pkg/meta"
)

// ErrWrite is returned when a metadata file cannot be written.
var ErrWrite = errors.New("metadata write failed")

// OutputPath returns where the metadata file for componentName is written.
func OutputPath(outputDir, componentName string) string {
	return filepath.Join(outputDir, components.OutputFileName(componentName))
}

// Write serializes doc and writes it to OutputPath, replacing any existing
// file. The output directory is created if missing.
func Write(outputDir string, doc *meta.Document) (string, error) {
	return WriteBytes(outputDir, doc.ComponentName, Serialize(doc))
}

// WriteBytes writes already-serialized document text for componentName.
func WriteBytes(outputDir, componentName string, data []byte) (string, error) {
	path := OutputPath(outputDir, componentName)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return path, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	return path, nil
}
