package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
)

func init() {
	RegisterFactory("file", NewFileBackendFactory)
}

// NewFileBackendFactory adapts NewFileBackend to the Factory signature.
func NewFileBackendFactory(dir string, log logging.Logger) (Backend, error) {
	return NewFileBackend(dir, log)
}

// FileBackend is the durable store: one JSON file per logical key under a
// data directory. It survives restarts and is shared by every process
// pointed at the same directory, which is what makes cross-process
// reconciliation possible.
type FileBackend struct {
	dir string
	log logging.Logger
}

// NewFileBackend creates the data directory if needed and returns a
// backend rooted at it.
func NewFileBackend(dir string, log logging.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir, log: log}, nil
}

func (f *FileBackend) Name() string { return "file" }

func (f *FileBackend) Read(ctx context.Context, key string) (*models.StampedRecord, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var rec models.StampedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupt payload is treated as absent.
		f.log.Warn(ctx, "discarding corrupt record", "backend", f.Name(), "key", key, "error", err)
		return nil, nil
	}
	return &rec, nil
}

// Write persists the record atomically: marshal to a temp file in the same
// directory, then rename over the target.
func (f *FileBackend) Write(_ context.Context, key string, rec *models.StampedRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp for %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// sanitizeKey maps a logical key to a safe file name.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
