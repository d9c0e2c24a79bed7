// Package storage provides the pluggable key-value backends the sync engine
// replicates catalog state across. Each backend holds at most one
// StampedRecord per logical key; the engine arbitrates between divergent
// copies, so backends stay deliberately dumb.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
)

// Backend is one physical storage mechanism. Implementations must be safe
// for concurrent use.
//
// Read returns (nil, nil) when the key is absent or its stored payload is
// corrupt; corruption is logged by the implementation, never surfaced as
// an error to the caller.
type Backend interface {
	// Name identifies the backend in logs and tests.
	Name() string

	// Read returns the decoded record for key, or nil if absent.
	Read(ctx context.Context, key string) (*models.StampedRecord, error)

	// Write overwrites any prior value for key.
	Write(ctx context.Context, key string, rec *models.StampedRecord) error

	// Close releases backend resources.
	Close() error
}

// Factory builds a Backend from the DSN remainder (everything after the
// scheme and separating colon).
type Factory func(dsn string, log logging.Logger) (Backend, error)

var factoryRegistry = struct {
	mu        sync.RWMutex
	factories map[string]Factory
}{
	factories: map[string]Factory{},
}

// RegisterFactory makes a backend constructor available under the given
// DSN scheme. Registration normally happens from init funcs in this
// package; tests may register fakes.
func RegisterFactory(scheme string, factory Factory) {
	scheme = normalizeScheme(scheme)
	if scheme == "" || factory == nil {
		return
	}
	factoryRegistry.mu.Lock()
	defer factoryRegistry.mu.Unlock()
	factoryRegistry.factories[scheme] = factory
}

// Open constructs a backend from a DSN of the form "scheme:rest", e.g.
// "memory:", "file:/var/lib/mediakeeper" or "sqlite:catalog.db".
func Open(dsn string, log logging.Logger) (Backend, error) {
	scheme, rest, _ := strings.Cut(dsn, ":")
	factory, ok := lookupFactory(scheme)
	if !ok {
		return nil, fmt.Errorf("unknown storage backend scheme %q", scheme)
	}
	return factory(rest, log)
}

func lookupFactory(scheme string) (Factory, bool) {
	scheme = normalizeScheme(scheme)
	factoryRegistry.mu.RLock()
	defer factoryRegistry.mu.RUnlock()
	factory, ok := factoryRegistry.factories[scheme]
	return factory, ok
}

func normalizeScheme(scheme string) string {
	return strings.ToLower(strings.TrimSpace(scheme))
}
