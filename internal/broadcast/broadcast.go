// Package broadcast propagates change notifications between subscribers in
// the same process and, via a watched marker directory, to other processes
// sharing the same data directory. Markers carry no payload: receivers are
// expected to re-load the key from storage, arbitrating staleness by
// timestamp.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/qubitlabs/mediakeeper/internal/logging"
)

// markerPrefix mirrors the key convention the simulated cloud uses.
const markerPrefix = "cloud_"

// Message is the fixed-schema notification delivered to subscribers.
//
// Data is nil for notifications that arrived from another process; such
// messages only signal "something changed, re-load the key".
type Message struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Writer    string          `json:"writer"`
}

// Remote reports whether the message arrived without payload from another
// process.
func (m Message) Remote() bool { return m.Data == nil }

// marker is the small record written to the markers directory on every
// publish. Its appearance is what other processes observe.
type marker struct {
	Key       string `json:"key"`
	Timestamp int64  `json:"timestamp"`
	Writer    string `json:"writer"`
}

// Config assembles a Broadcaster. MarkersDir may be empty to disable the
// cross-process channel (used by tests that only need in-process events).
type Config struct {
	DeviceID   string
	MarkersDir string
	Logger     logging.Logger
}

// Broadcaster fans change notifications out to subscribers. Within one
// process, subscribers receive every publish for their key in publish
// order; across processes ordering is not guaranteed and consumers must
// compare timestamps before overwriting local state.
type Broadcaster struct {
	deviceID   string
	markersDir string
	log        logging.Logger
	watcher    *fsnotify.Watcher

	mu     sync.Mutex
	subs   map[string][]*subscription
	nextID int
	closed bool

	done chan struct{}
}

type subscription struct {
	id  int
	key string
	ch  chan Message
}

func New(cfg Config) (*Broadcaster, error) {
	b := &Broadcaster{
		deviceID:   cfg.DeviceID,
		markersDir: cfg.MarkersDir,
		log:        cfg.Logger,
		subs:       make(map[string][]*subscription),
		done:       make(chan struct{}),
	}

	if cfg.MarkersDir == "" {
		return b, nil
	}

	if err := os.MkdirAll(cfg.MarkersDir, 0o770); err != nil {
		return nil, fmt.Errorf("mkdir markers dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create marker watcher: %w", err)
	}
	if err := watcher.Add(cfg.MarkersDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch markers dir: %w", err)
	}
	b.watcher = watcher
	go b.watchMarkers()

	return b, nil
}

// Publish delivers {key, data, timestamp} to same-process subscribers and
// touches the key's marker so other processes observe the write without
// polling. Implements the engine's Broadcaster seam.
func (b *Broadcaster) Publish(ctx context.Context, key string, data json.RawMessage, timestamp int64) {
	msg := Message{Key: key, Data: data, Timestamp: timestamp, Writer: b.deviceID}
	b.deliver(ctx, msg)
	b.touchMarker(ctx, key, timestamp)
}

// Subscribe registers a listener for key. The returned cancel func must be
// called when the listener goes away; it closes the channel.
//
// Slow subscribers do not block publishers: messages beyond the buffer are
// dropped with a warning, on the theory that the poller will reconcile.
func (b *Broadcaster) Subscribe(key string, buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = 16
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, key: key, ch: make(chan Message, buffer)}
	b.subs[key] = append(b.subs[key], sub)

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[key]
		for i, s := range list {
			if s.id == sub.id {
				b.subs[key] = append(list[:i], list[i+1:]...)
				close(s.ch)
				return
			}
		}
	}
	return sub.ch, cancel
}

// Close stops the marker watcher and closes all subscriber channels.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, list := range b.subs {
		for _, s := range list {
			close(s.ch)
		}
	}
	b.subs = make(map[string][]*subscription)
	b.mu.Unlock()

	close(b.done)
	if b.watcher != nil {
		return b.watcher.Close()
	}
	return nil
}

func (b *Broadcaster) deliver(ctx context.Context, msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, s := range b.subs[msg.Key] {
		select {
		case s.ch <- msg:
		default:
			b.log.Warn(ctx, "dropping notification for slow subscriber", "key", msg.Key)
		}
	}
}

func (b *Broadcaster) touchMarker(ctx context.Context, key string, timestamp int64) {
	if b.markersDir == "" {
		return
	}

	m := marker{Key: key, Timestamp: timestamp, Writer: b.deviceID}
	data, err := json.Marshal(m)
	if err != nil {
		b.log.Warn(ctx, "marker marshal failed", "key", key, "error", err)
		return
	}
	path := filepath.Join(b.markersDir, markerPrefix+sanitizeKey(key))
	if err := os.WriteFile(path, data, 0o660); err != nil {
		// Best effort: the poller covers processes that miss the event.
		b.log.Warn(ctx, "marker write failed", "key", key, "error", err)
	}
}

// watchMarkers turns foreign marker writes into payload-less messages.
func (b *Broadcaster) watchMarkers() {
	ctx := context.Background()
	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasPrefix(filepath.Base(event.Name), markerPrefix) {
				continue
			}
			b.handleMarker(ctx, event.Name)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.log.Warn(ctx, "marker watcher error", "error", err)
		}
	}
}

func (b *Broadcaster) handleMarker(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		b.log.Warn(ctx, "marker read failed", "path", path, "error", err)
		return
	}
	var m marker
	if err := json.Unmarshal(data, &m); err != nil {
		b.log.Warn(ctx, "discarding corrupt marker", "path", path, "error", err)
		return
	}
	// Our own publishes were already delivered in-process.
	if m.Writer == b.deviceID {
		return
	}
	b.deliver(ctx, Message{Key: m.Key, Timestamp: m.Timestamp, Writer: m.Writer})
}

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
