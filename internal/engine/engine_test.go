package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
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

// brokenBackend fails every operation, simulating a quota-exceeded or
// aborted-transaction store.
type brokenBackend struct{}

func (brokenBackend) Name() string { return "broken" }
func (brokenBackend) Read(context.Context, string) (*models.StampedRecord, error) {
	return nil, errors.New("transaction aborted")
}
func (brokenBackend) Write(context.Context, string, *models.StampedRecord) error {
	return errors.New("quota exceeded")
}
func (brokenBackend) Close() error { return nil }

func newTestEngine(t *testing.T, deviceID string, backends ...storage.Backend) *Engine {
	t.Helper()
	e, err := New(Config{
		Backends: backends,
		DeviceID: deviceID,
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	return e
}

func TestNew_RequiresBackends(t *testing.T) {
	t.Parallel()

	_, err := New(Config{DeviceID: "device_a", Logger: testLogger()})
	assert.Error(t, err)
}

func TestSyncThenLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(t, "device_a", storage.NewMemoryBackend(), storage.NewMemoryBackend())

	videos := []models.Video{{ID: "1", Title: "Quantum Error Correction"}}
	res, err := e.SyncData(ctx, "videos", videos)
	require.NoError(t, err)
	assert.True(t, res.Complete())

	got, err := Load(ctx, e, "videos", []models.Video(nil))
	require.NoError(t, err)
	assert.Equal(t, videos, got)
}

func TestLoadData_DefaultFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(t, "device_a", storage.NewMemoryBackend())

	got, err := Load(ctx, e, "nonexistent", []models.Video{})
	require.NoError(t, err)
	assert.Equal(t, []models.Video{}, got)
}

func TestLoadData_DefaultFallbackWhenAllBackendsFail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(t, "device_a", brokenBackend{}, brokenBackend{})

	got, err := Load(ctx, e, "videos", []models.Video{})
	require.NoError(t, err)
	assert.Equal(t, []models.Video{}, got)
}

func TestSyncData_PartialBackendFailureDoesNotRaise(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	durable := storage.NewMemoryBackend()
	session := storage.NewMemoryBackend()
	e := newTestEngine(t, "device_a", durable, session, brokenBackend{})

	res, err := e.SyncData(ctx, "videos", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.Complete())

	// The surviving backends hold the new value.
	for _, b := range []storage.Backend{durable, session} {
		rec, err := b.Read(ctx, "videos")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.JSONEq(t, `["a","b"]`, string(rec.Value))
	}
}

func TestLoadData_ReadRepair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stale := storage.NewMemoryBackend()
	fresh := storage.NewMemoryBackend()

	require.NoError(t, stale.Write(ctx, "videos", &models.StampedRecord{
		Value: json.RawMessage(`["old"]`), Timestamp: 100, Writer: "device_a",
	}))
	require.NoError(t, fresh.Write(ctx, "videos", &models.StampedRecord{
		Value: json.RawMessage(`["new"]`), Timestamp: 200, Writer: "device_b",
	}))

	e := newTestEngine(t, "device_c", stale, fresh)

	got, err := Load(ctx, e, "videos", []string(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, got)

	// The stale backend was rewritten with the winning copy.
	rec, err := stale.Read(ctx, "videos")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.JSONEq(t, `["new"]`, string(rec.Value))
	assert.Equal(t, int64(200), rec.Timestamp)
	assert.Equal(t, "device_b", rec.Writer)
}

func TestLoadData_RepairsEmptyBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	empty := storage.NewMemoryBackend()
	fresh := storage.NewMemoryBackend()

	require.NoError(t, fresh.Write(ctx, "patents", &models.StampedRecord{
		Value: json.RawMessage(`["p1"]`), Timestamp: 50, Writer: "device_a",
	}))

	e := newTestEngine(t, "device_b", empty, fresh)

	_, err := Load(ctx, e, "patents", []string(nil))
	require.NoError(t, err)

	rec, err := empty.Read(ctx, "patents")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.JSONEq(t, `["p1"]`, string(rec.Value))
}

func TestTwoWriters_LaterTimestampWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Shared backends simulate the common origin storage.
	durable := storage.NewMemoryBackend()
	session := storage.NewMemoryBackend()

	clock := int64(1000)
	tab1, err := New(Config{
		Backends: []storage.Backend{durable, session},
		DeviceID: "device_tab1", Logger: testLogger(),
		Now: func() int64 { return clock },
	})
	require.NoError(t, err)
	tab2, err := New(Config{
		Backends: []storage.Backend{durable, session},
		DeviceID: "device_tab2", Logger: testLogger(),
		Now: func() int64 { return clock + 5 },
	})
	require.NoError(t, err)

	_, err = tab1.SyncData(ctx, "videos", []string{"A"})
	require.NoError(t, err)
	_, err = tab2.SyncData(ctx, "videos", []string{"A", "B"})
	require.NoError(t, err)

	// A third context observes the later write.
	tab3 := newTestEngine(t, "device_tab3", durable, session)
	got, err := Load(ctx, tab3, "videos", []string(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestConvergence_AllBackendsHoldMaxTimestampAfterLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backends := []storage.Backend{
		storage.NewMemoryBackend(),
		storage.NewMemoryBackend(),
		storage.NewMemoryBackend(),
	}

	// N simulated tabs write concurrently to the same key.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tab := newTestEngine(t, "device_"+string(rune('a'+i)), backends...)
			_, _ = tab.SyncData(ctx, "videos", []int{i})
		}(i)
	}
	wg.Wait()

	reader := newTestEngine(t, "device_reader", backends...)
	winner, err := reader.LoadRecord(ctx, "videos")
	require.NoError(t, err)
	require.NotNil(t, winner)

	for _, b := range backends {
		rec, err := b.Read(ctx, "videos")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, rec.Equal(winner), "backend %s did not converge", b.Name())
	}
}

func TestSyncData_TimestampsStrictlyIncrease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	frozen := int64(12345)
	e, err := New(Config{
		Backends: []storage.Backend{storage.NewMemoryBackend()},
		DeviceID: "device_a", Logger: testLogger(),
		Now: func() int64 { return frozen },
	})
	require.NoError(t, err)

	r1, err := e.SyncData(ctx, "videos", []string{"x"})
	require.NoError(t, err)
	r2, err := e.SyncData(ctx, "videos", []string{"x"})
	require.NoError(t, err)

	// Identical payloads still get distinct, increasing stamps.
	assert.Greater(t, r2.Timestamp, r1.Timestamp)
}

func TestSyncData_StampAdvancesPastObservedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := storage.NewMemoryBackend()
	require.NoError(t, b.Write(ctx, "videos", &models.StampedRecord{
		Value: json.RawMessage(`["remote"]`), Timestamp: 99999, Writer: "device_z",
	}))

	e, err := New(Config{
		Backends: []storage.Backend{b},
		DeviceID: "device_a", Logger: testLogger(),
		Now: func() int64 { return 10 },
	})
	require.NoError(t, err)

	_, err = Load(ctx, e, "videos", []string(nil))
	require.NoError(t, err)

	res, err := e.SyncData(ctx, "videos", []string{"local"})
	require.NoError(t, err)
	assert.Greater(t, res.Timestamp, int64(99999))
}

func TestLegacyKeyAliases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := newTestEngine(t, "device_a", storage.NewMemoryBackend())

	_, err := e.SyncData(ctx, "adminVideos", []string{"v"})
	require.NoError(t, err)

	got, err := Load(ctx, e, "videos", []string(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, got)
}

// recordingBroadcaster captures published messages.
type recordingBroadcaster struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingBroadcaster) Publish(_ context.Context, key string, _ json.RawMessage, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func TestSyncData_PublishesOnceAndRepairDoesNot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stale := storage.NewMemoryBackend()
	fresh := storage.NewMemoryBackend()
	bc := &recordingBroadcaster{}

	e, err := New(Config{
		Backends:    []storage.Backend{stale, fresh},
		DeviceID:    "device_a",
		Logger:      testLogger(),
		Broadcaster: bc,
	})
	require.NoError(t, err)

	_, err = e.SyncData(ctx, "videos", []string{"v"})
	require.NoError(t, err)

	// Make the first backend stale, then load: the repair write must not
	// publish a second notification.
	require.NoError(t, stale.Write(ctx, "videos", &models.StampedRecord{
		Value: json.RawMessage(`["old"]`), Timestamp: 1, Writer: "device_old",
	}))
	_, err = Load(ctx, e, "videos", []string(nil))
	require.NoError(t, err)

	bc.mu.Lock()
	defer bc.mu.Unlock()
	assert.Equal(t, []string{"videos"}, bc.keys)
}
