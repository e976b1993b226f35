// Package staging owns the local directory where downloaded videos wait
// for upload, and removes them once a conversation is over.
package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const defaultVideoExt = ".mp4"

type Janitor struct {
	dir string
}

// NewJanitor resolves dir against the working directory. Staged paths are
// handed to a publisher that runs elsewhere, so they must be absolute.
func NewJanitor(dir string) (*Janitor, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Janitor{dir: abs}, nil
}

func (j *Janitor) Dir() string {
	return j.dir
}

// StagePath returns a fresh path inside the staging dir. Nothing is created.
func (j *Janitor) StagePath(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 8 {
		ext = defaultVideoExt
	}
	return filepath.Join(j.dir, uuid.NewString()+ext)
}

// Cleanup removes path. A file that is already gone is not an error.
func (j *Janitor) Cleanup(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file %s: %w", path, err)
	}
	return nil
}

// Purge deletes leftovers from a previous process. Conversations are not
// persisted, so nothing in the dir can still be referenced at startup.
func (j *Janitor) Purge() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(j.dir, entry.Name())
		if err := j.Cleanup(path); err != nil {
			slog.Warn("failed to purge staged file", "error", err, "path", path)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		slog.Info("purged leftover staged files", "dir", j.dir, "count", deleted)
	}
	return deleted, nil
}
