package storage

import (
	"context"
	"sync"

	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
)

func init() {
	RegisterFactory("memory", func(string, logging.Logger) (Backend, error) {
		return NewMemoryBackend(), nil
	})
}

// MemoryBackend is the session-scoped store: fast, shared by every caller
// in the process, gone when the process exits.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]models.StampedRecord
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]models.StampedRecord)}
}

func (m *MemoryBackend) Name() string { return "memory" }

// Read returns a copy of the stored record so callers cannot mutate the
// backend's state through the shared Value slice.
func (m *MemoryBackend) Read(_ context.Context, key string) (*models.StampedRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := rec
	out.Value = append([]byte(nil), rec.Value...)
	return &out, nil
}

func (m *MemoryBackend) Write(_ context.Context, key string, rec *models.StampedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.Value = append([]byte(nil), rec.Value...)
	m.data[key] = stored
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
