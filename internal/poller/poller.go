// Package poller periodically re-reads every tracked key and hands newer
// data to its consumer. It is the safety net behind the broadcaster: a tab
// that missed an event (e.g. it raced the initial load) still converges
// within one polling interval.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/models"
)

const (
	DefaultInterval = 15 * time.Second
	DefaultCooldown = 5 * time.Second
)

// Loader is the slice of the sync engine the poller needs.
type Loader interface {
	LoadRecord(ctx context.Context, key string) (*models.StampedRecord, error)
}

// ChangeFunc receives the winning record whenever a tracked key's value
// changed since the last delivery.
type ChangeFunc func(ctx context.Context, key string, rec *models.StampedRecord)

type Config struct {
	Loader   Loader
	Keys     []string
	Logger   logging.Logger
	OnChange ChangeFunc

	// Interval is the tick period; Cooldown is the minimum quiet time
	// after a completed poll before the next one may start.
	Interval time.Duration
	Cooldown time.Duration
}

// Poller re-reads tracked keys on a fixed interval. A tick is skipped while
// a previous poll is still in flight or within the cooldown window, so slow
// backends never cause overlapping polls.
type Poller struct {
	loader   Loader
	keys     []string
	log      logging.Logger
	onChange ChangeFunc
	interval time.Duration
	cooldown time.Duration

	inFlight atomic.Bool

	mu       sync.Mutex
	lastDone time.Time
	seen     map[string]string
}

func New(cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Poller{
		loader:   cfg.Loader,
		keys:     cfg.Keys,
		log:      cfg.Logger,
		onChange: cfg.OnChange,
		interval: cfg.Interval,
		cooldown: cfg.Cooldown,
		seen:     make(map[string]string),
	}
}

// Run blocks, polling until ctx is cancelled. The ticker is always
// released on return; no timers outlive the owning scope.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one poll cycle. Exported so the owning scope can force an
// immediate reconciliation (e.g. right after startup).
func (p *Poller) Tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug(ctx, "skipping tick, poll in flight")
		return
	}
	defer p.inFlight.Store(false)

	p.mu.Lock()
	tooSoon := !p.lastDone.IsZero() && time.Since(p.lastDone) < p.cooldown
	p.mu.Unlock()
	if tooSoon {
		p.log.Debug(ctx, "skipping tick, within cooldown")
		return
	}

	for _, key := range p.keys {
		if ctx.Err() != nil {
			return
		}
		p.pollKey(ctx, key)
	}

	p.mu.Lock()
	p.lastDone = time.Now()
	p.mu.Unlock()
}

// pollKey delivers the key's winning record when its value (not merely its
// stamp) differs from what was last handed to the consumer.
func (p *Poller) pollKey(ctx context.Context, key string) {
	rec, err := p.loader.LoadRecord(ctx, key)
	if err != nil {
		p.log.Warn(ctx, "poll failed", "key", key, "error", err)
		return
	}
	if rec == nil {
		return
	}

	p.mu.Lock()
	prev, ok := p.seen[key]
	changed := !ok || prev != string(rec.Value)
	if changed {
		p.seen[key] = string(rec.Value)
	}
	p.mu.Unlock()

	if !changed {
		return
	}

	p.log.Debug(ctx, "poll detected change", "key", key, "timestamp", rec.Timestamp, "writer", rec.Writer)
	if p.onChange != nil {
		p.onChange(ctx, key, rec)
	}
}
