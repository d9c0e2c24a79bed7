// Package engine implements the storage-reconciliation core: every write
// fans out to all configured backends with one shared stamp, every read
// picks the freshest copy across backends and opportunistically repairs
// the stale ones.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/common"
	"github.com/qubitlabs/mediakeeper/internal/device"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/storage"
)

// DefaultReadTimeout bounds each backend read so one hung backend cannot
// stall a load; the freshest record among the backends that answered in
// time still wins.
const DefaultReadTimeout = 2 * time.Second

// Broadcaster receives change notifications after successful writes.
// Implemented by broadcast.Broadcaster; nil disables broadcasting.
type Broadcaster interface {
	Publish(ctx context.Context, key string, value json.RawMessage, timestamp int64)
}

// Config assembles the engine's collaborators. Backends and DeviceID are
// required; the rest defaults sensibly.
type Config struct {
	Backends    []storage.Backend
	DeviceID    string
	Logger      logging.Logger
	Broadcaster Broadcaster
	ReadTimeout time.Duration

	// Now is a test seam; defaults to device.Now.
	Now func() int64
}

// Engine is safe for concurrent use. All its collaborators are injected
// explicitly so tests can swap in fakes.
type Engine struct {
	backends    []storage.Backend
	deviceID    string
	log         logging.Logger
	bc          Broadcaster
	readTimeout time.Duration
	now         func() int64

	mu        sync.Mutex
	lastStamp int64
}

// SyncResult reports how the fan-out went so callers can surface partial
// failure ("saved locally, sync pending") distinctly from full success.
type SyncResult struct {
	Timestamp int64
	Attempted int
	Failed    int
}

// Complete reports whether every backend accepted the write.
func (r SyncResult) Complete() bool { return r.Failed == 0 }

func New(cfg Config) (*Engine, error) {
	if len(cfg.Backends) == 0 {
		return nil, common.ErrNoBackends
	}
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("engine: device id is required")
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Now == nil {
		cfg.Now = device.Now
	}
	return &Engine{
		backends:    cfg.Backends,
		deviceID:    cfg.DeviceID,
		log:         cfg.Logger,
		bc:          cfg.Broadcaster,
		readTimeout: cfg.ReadTimeout,
		now:         cfg.Now,
	}, nil
}

// DeviceID returns the writer identity stamped onto records.
func (e *Engine) DeviceID() string { return e.deviceID }

// SyncData stamps value and writes it to every backend independently.
// A backend that fails is simply behind and will be repaired on the next
// LoadData; the call only errors when value itself cannot be serialized.
//
// Two identical SyncData calls produce two records with different
// timestamps; the later one wins on read.
func (e *Engine) SyncData(ctx context.Context, key string, value any) (SyncResult, error) {
	key = canonicalKey(key)

	raw, err := json.Marshal(value)
	if err != nil {
		return SyncResult{}, fmt.Errorf("marshal %s: %w", key, err)
	}

	rec := &models.StampedRecord{
		Value:     raw,
		Timestamp: e.stamp(),
		Writer:    e.deviceID,
	}

	res := SyncResult{Timestamp: rec.Timestamp, Attempted: len(e.backends)}

	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
	)
	for _, b := range e.backends {
		wg.Add(1)
		go func(b storage.Backend) {
			defer wg.Done()
			if err := b.Write(ctx, key, rec); err != nil {
				e.log.Warn(ctx, "backend write failed", "backend", b.Name(), "key", key, "error", err)
				failedMu.Lock()
				res.Failed++
				failedMu.Unlock()
			}
		}(b)
	}
	wg.Wait()

	if res.Failed > 0 {
		e.log.Warn(ctx, "sync incomplete", "key", key, "failed", res.Failed, "attempted", res.Attempted)
	}

	if e.bc != nil {
		e.bc.Publish(ctx, key, raw, rec.Timestamp)
	}
	return res, nil
}

// LoadData reads key from every backend concurrently, decodes the record
// with the highest timestamp into out (which must be a pointer), and
// repairs stale backends with the winning copy. When no backend holds a
// record, out is left untouched and found is false, so the caller keeps its
// default.
func (e *Engine) LoadData(ctx context.Context, key string, out any) (found bool, err error) {
	winner, _, err := e.loadRecord(ctx, key)
	if err != nil {
		return false, err
	}
	if winner == nil {
		return false, nil
	}
	if err := json.Unmarshal(winner.Value, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// LoadRecord returns the winning stamped record without decoding it.
// The poller uses it for cheap change detection.
func (e *Engine) LoadRecord(ctx context.Context, key string) (*models.StampedRecord, error) {
	winner, _, err := e.loadRecord(ctx, key)
	return winner, err
}

func (e *Engine) loadRecord(ctx context.Context, key string) (*models.StampedRecord, []backendRead, error) {
	key = canonicalKey(key)
	reads := e.readAll(ctx, key)

	var winner *models.StampedRecord
	for _, r := range reads {
		if r.rec.Newer(winner) {
			winner = r.rec
		}
	}
	if winner == nil {
		return nil, reads, nil
	}

	e.repair(ctx, key, winner, reads)

	// Keep the local stamp ahead of anything observed so our next write
	// wins against the record we just adopted.
	e.observe(winner.Timestamp)

	return winner, reads, nil
}

type backendRead struct {
	backend storage.Backend
	rec     *models.StampedRecord
}

// readAll queries every backend concurrently, each under its own timeout.
// Backend errors and timeouts degrade to "no record from this backend".
func (e *Engine) readAll(ctx context.Context, key string) []backendRead {
	reads := make([]backendRead, len(e.backends))

	var wg sync.WaitGroup
	for i, b := range e.backends {
		wg.Add(1)
		go func(i int, b storage.Backend) {
			defer wg.Done()

			rctx, cancel := context.WithTimeout(ctx, e.readTimeout)
			defer cancel()

			rec, err := b.Read(rctx, key)
			if err != nil {
				e.log.Warn(ctx, "backend read failed", "backend", b.Name(), "key", key, "error", err)
				rec = nil
			}
			reads[i] = backendRead{backend: b, rec: rec}
		}(i, b)
	}
	wg.Wait()

	return reads
}

// repair rewrites backends holding a stale or missing copy with the
// winning record. Repairs do not re-broadcast to avoid event storms.
func (e *Engine) repair(ctx context.Context, key string, winner *models.StampedRecord, reads []backendRead) {
	for _, r := range reads {
		if r.rec != nil && !winner.Newer(r.rec) {
			continue
		}
		if err := r.backend.Write(ctx, key, winner); err != nil {
			e.log.Warn(ctx, "read-repair failed", "backend", r.backend.Name(), "key", key, "error", err)
			continue
		}
		e.log.Debug(ctx, "read-repair applied", "backend", r.backend.Name(), "key", key, "timestamp", winner.Timestamp)
	}
}

// stamp returns the next write timestamp, strictly greater than any stamp
// previously produced or observed by this engine.
func (e *Engine) stamp() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	ts := e.now()
	if ts <= e.lastStamp {
		ts = e.lastStamp + 1
	}
	e.lastStamp = ts
	return ts
}

func (e *Engine) observe(ts int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ts > e.lastStamp {
		e.lastStamp = ts
	}
}

// canonicalKey folds legacy admin-prefixed key spellings onto the
// canonical collection keys.
func canonicalKey(key string) string {
	if canonical, ok := common.LegacyKeyAliases[key]; ok {
		return canonical
	}
	return key
}

// Load reads key through e into a value of type T, returning def when no
// backend holds a record.
func Load[T any](ctx context.Context, e *Engine, key string, def T) (T, error) {
	out := def
	found, err := e.LoadData(ctx, key, &out)
	if err != nil || !found {
		return def, err
	}
	return out, nil
}
