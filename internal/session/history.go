package session

import (
	"fmt"

	"filedex/internal/filesystem"
	"filedex/internal/logging"
)

// History records search terms the user resets away from, so they can be
// recalled later. Recording is best-effort; failures are logged by the
// session and never block a reset.
type History interface {
	Record(term string) error
}

// FileHistory appends one term per line to a text file.
type FileHistory struct {
	path string
}

// NewFileHistory creates a history backed by the file at path.
func NewFileHistory(path string) *FileHistory {
	return &FileHistory{path: path}
}

// Record appends term to the history file.
func (h *FileHistory) Record(term string) error {
	f, err := filesystem.OpenAppendWithRetry(h.path, filesystem.DefaultRetryConfig())
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Error("failed to close history file: %v", closeErr)
		}
	}()

	if _, err := fmt.Fprintln(f, term); err != nil {
		return fmt.Errorf("writing history entry: %w", err)
	}
	return nil
}
