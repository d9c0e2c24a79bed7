package device

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelDebug)
}

func TestNewID_Format(t *testing.T) {
	t.Parallel()

	id := NewID()
	assert.Regexp(t, regexp.MustCompile(`^device_\d+_[0-9a-f]{7}$`), id)
}

func TestGetOrCreateID_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	durable := storage.NewMemoryBackend()

	first := GetOrCreateID(ctx, durable, testLogger())
	second := GetOrCreateID(ctx, durable, testLogger())

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

// failingBackend rejects all operations; GetOrCreateID must still hand out
// a usable id.
type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }
func (failingBackend) Read(context.Context, string) (*models.StampedRecord, error) {
	return nil, errors.New("backend down")
}
func (failingBackend) Write(context.Context, string, *models.StampedRecord) error {
	return errors.New("backend down")
}
func (failingBackend) Close() error { return nil }

func TestGetOrCreateID_SwallowsStorageFailure(t *testing.T) {
	t.Parallel()

	id := GetOrCreateID(context.Background(), failingBackend{}, testLogger())
	assert.NotEmpty(t, id)
}
