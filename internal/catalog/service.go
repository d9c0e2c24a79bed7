// Package catalog is the application service over the sync core: it holds
// the in-memory copy of the three collections, gates mutations behind the
// admin role, rebuilds the derived feed after every change and keeps the
// in-memory state reconciled with what other devices write.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qubitlabs/mediakeeper/internal/auth"
	"github.com/qubitlabs/mediakeeper/internal/broadcast"
	"github.com/qubitlabs/mediakeeper/internal/common"
	"github.com/qubitlabs/mediakeeper/internal/engine"
	"github.com/qubitlabs/mediakeeper/internal/feed"
	"github.com/qubitlabs/mediakeeper/internal/logging"
	"github.com/qubitlabs/mediakeeper/internal/mediax"
	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/qubitlabs/mediakeeper/internal/poller"
)

type Config struct {
	Engine      *engine.Engine
	Broadcaster *broadcast.Broadcaster
	Logger      logging.Logger

	PollInterval time.Duration
	PollCooldown time.Duration
	FeedLimit    int

	// OnUpdate, when set, is invoked with the changed key after the
	// in-memory state moved. Serves UI re-render hooks.
	OnUpdate func(key string)

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
}

// Service is safe for concurrent use. Collections are mutated only by
// whole-slice replacement, so readers holding a returned slice are never
// surprised by in-place edits.
type Service struct {
	engine    *engine.Engine
	bc        *broadcast.Broadcaster
	log       logging.Logger
	feedLimit int
	pollInt   time.Duration
	pollCool  time.Duration
	onUpdate  func(key string)
	now       func() time.Time

	mu        sync.RWMutex
	videos    []models.Video
	documents []models.Document
	patents   []models.Patent
	updates   []models.RecentUpdate

	refresh chan string
}

func New(cfg Config) *Service {
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = feed.DefaultLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		engine:    cfg.Engine,
		bc:        cfg.Broadcaster,
		log:       cfg.Logger,
		feedLimit: cfg.FeedLimit,
		pollInt:   cfg.PollInterval,
		pollCool:  cfg.PollCooldown,
		onUpdate:  cfg.OnUpdate,
		now:       cfg.Now,
		refresh:   make(chan string, 32),
	}
}

// Load hydrates the in-memory state from storage, seeding the sample
// catalog when every collection is empty (first run).
func (s *Service) Load(ctx context.Context) error {
	videos, err := engine.Load(ctx, s.engine, common.KeyVideos, []models.Video{})
	if err != nil {
		return fmt.Errorf("load videos: %w", err)
	}
	documents, err := engine.Load(ctx, s.engine, common.KeyDocuments, []models.Document{})
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	patents, err := engine.Load(ctx, s.engine, common.KeyPatents, []models.Patent{})
	if err != nil {
		return fmt.Errorf("load patents: %w", err)
	}
	updates, err := engine.Load(ctx, s.engine, common.KeyRecentUpdates, []models.RecentUpdate{})
	if err != nil {
		return fmt.Errorf("load recent updates: %w", err)
	}

	s.mu.Lock()
	s.videos, s.documents, s.patents, s.updates = videos, documents, patents, updates
	s.mu.Unlock()

	if len(videos) == 0 && len(documents) == 0 && len(patents) == 0 {
		s.log.Info(ctx, "empty catalog, seeding sample data")
		return s.seed(ctx)
	}
	return nil
}

// Start wires the two change producers (broadcast subscriptions and the
// reconciliation poller) into the single refresh consumer. All spawned
// goroutines stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	trackedKeys := append(append([]string{}, common.CatalogKeys...), common.KeyRecentUpdates)

	// Producer 1: broadcast listeners.
	if s.bc != nil {
		s.subscribeAll(ctx, trackedKeys)
	}

	// Producer 2: the poller, covering missed broadcasts.
	p := poller.New(poller.Config{
		Loader:   s.engine,
		Keys:     trackedKeys,
		Logger:   s.log,
		Interval: s.pollInt,
		Cooldown: s.pollCool,
		OnChange: func(_ context.Context, key string, _ *models.StampedRecord) {
			s.requestRefresh(key)
		},
	})
	go p.Run(ctx)

	// The single consumer: reconcile one key at a time.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case key := <-s.refresh:
				s.reconcile(ctx, key)
			}
		}
	}()
}

// subscribeAll forwards remote broadcast messages for each key into the
// refresh channel. Messages from this service's own writes are skipped;
// local mutations already updated the in-memory state.
func (s *Service) subscribeAll(ctx context.Context, keys []string) {
	for _, key := range keys {
		ch, cancel := s.bc.Subscribe(key, 16)
		go func(key string, ch <-chan broadcast.Message, cancel func()) {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					if msg.Writer == s.engine.DeviceID() {
						continue
					}
					s.requestRefresh(key)
				}
			}
		}(key, ch, cancel)
	}
}

func (s *Service) requestRefresh(key string) {
	select {
	case s.refresh <- key:
	default:
		// Queue full: a reconcile for some key is already pending and
		// reconciliation re-reads storage anyway.
	}
}

// reconcile re-loads one key and swaps the in-memory copy when storage
// holds something different. Incoming data may be stale versus a
// concurrent local write; LoadData already arbitrated by timestamp.
func (s *Service) reconcile(ctx context.Context, key string) {
	changed := false
	switch key {
	case common.KeyVideos:
		videos, err := engine.Load(ctx, s.engine, key, []models.Video{})
		if err != nil {
			s.log.Warn(ctx, "reconcile failed", "key", key, "error", err)
			return
		}
		s.mu.Lock()
		if !videosEqual(s.videos, videos) {
			s.videos = videos
			changed = true
		}
		s.mu.Unlock()
	case common.KeyDocuments:
		documents, err := engine.Load(ctx, s.engine, key, []models.Document{})
		if err != nil {
			s.log.Warn(ctx, "reconcile failed", "key", key, "error", err)
			return
		}
		s.mu.Lock()
		if !documentsEqual(s.documents, documents) {
			s.documents = documents
			changed = true
		}
		s.mu.Unlock()
	case common.KeyPatents:
		patents, err := engine.Load(ctx, s.engine, key, []models.Patent{})
		if err != nil {
			s.log.Warn(ctx, "reconcile failed", "key", key, "error", err)
			return
		}
		s.mu.Lock()
		if !patentsEqual(s.patents, patents) {
			s.patents = patents
			changed = true
		}
		s.mu.Unlock()
	case common.KeyRecentUpdates:
		updates, err := engine.Load(ctx, s.engine, key, []models.RecentUpdate{})
		if err != nil {
			s.log.Warn(ctx, "reconcile failed", "key", key, "error", err)
			return
		}
		s.mu.Lock()
		s.updates = updates
		changed = true
		s.mu.Unlock()
	default:
		return
	}

	if changed {
		s.log.Debug(ctx, "state reconciled", "key", key)
		s.notify(key)
		// A changed catalog invalidates the derived feed. Rebuilding is
		// deterministic for a given state, so devices do not ping-pong.
		if key != common.KeyRecentUpdates {
			if err := s.rebuildFeed(ctx); err != nil {
				s.log.Warn(ctx, "feed rebuild failed", "error", err)
			}
		}
	}
}

func (s *Service) notify(key string) {
	if s.onUpdate != nil {
		s.onUpdate(key)
	}
}

// Videos returns a copy of the current video collection.
func (s *Service) Videos() []models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Video(nil), s.videos...)
}

func (s *Service) Documents() []models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Document(nil), s.documents...)
}

func (s *Service) Patents() []models.Patent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Patent(nil), s.patents...)
}

// RecentUpdates returns a copy of the derived feed.
func (s *Service) RecentUpdates() []models.RecentUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RecentUpdate(nil), s.updates...)
}

// AccessibleVideos filters the collection through the capability check.
func (s *Service) AccessibleVideos(session *auth.Session) []models.Video {
	var out []models.Video
	for _, v := range s.Videos() {
		if auth.CanAccess(v, session) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) AccessibleDocuments(session *auth.Session) []models.Document {
	var out []models.Document
	for _, d := range s.Documents() {
		if auth.CanAccess(d, session) {
			out = append(out, d)
		}
	}
	return out
}

func (s *Service) AccessiblePatents(session *auth.Session) []models.Patent {
	var out []models.Patent
	for _, p := range s.Patents() {
		if auth.CanAccess(p, session) {
			out = append(out, p)
		}
	}
	return out
}

// AddVideo appends a video to the catalog. Admin only.
func (s *Service) AddVideo(ctx context.Context, session *auth.Session, v models.Video) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}
	if v.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidItem)
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.ThumbnailURL == "" {
		v.ThumbnailURL = mediax.YouTubeThumbnail(v.VideoURL)
	}
	if v.UploadedAt == "" {
		v.UploadedAt = s.now().Format("2006-01-02")
	}

	s.mu.Lock()
	for _, existing := range s.videos {
		if existing.ID == v.ID {
			s.mu.Unlock()
			return common.ErrDuplicateItemID
		}
	}
	videos := append(append([]models.Video(nil), s.videos...), v)
	s.videos = videos
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyVideos)
}

// UpdateVideo replaces the record with the same id. Admin only.
func (s *Service) UpdateVideo(ctx context.Context, session *auth.Session, v models.Video) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}

	s.mu.Lock()
	videos := append([]models.Video(nil), s.videos...)
	found := false
	for i := range videos {
		if videos[i].ID == v.ID {
			videos[i] = v
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.videos = videos
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyVideos)
}

// DeleteVideo removes the record with the given id. Admin only.
func (s *Service) DeleteVideo(ctx context.Context, session *auth.Session, id string) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}

	s.mu.Lock()
	videos := make([]models.Video, 0, len(s.videos))
	found := false
	for _, v := range s.videos {
		if v.ID == id {
			found = true
			continue
		}
		videos = append(videos, v)
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.videos = videos
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyVideos)
}

// AddDocument appends a document to the catalog. Admin only.
func (s *Service) AddDocument(ctx context.Context, session *auth.Session, d models.Document) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidItem)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt == "" {
		d.UploadedAt = s.now().Format("2006-01-02")
	}

	s.mu.Lock()
	for _, existing := range s.documents {
		if existing.ID == d.ID {
			s.mu.Unlock()
			return common.ErrDuplicateItemID
		}
	}
	s.documents = append(append([]models.Document(nil), s.documents...), d)
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyDocuments)
}

// UpdateDocument replaces the record with the same id. Admin only.
func (s *Service) UpdateDocument(ctx context.Context, session *auth.Session, d models.Document) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}

	s.mu.Lock()
	documents := append([]models.Document(nil), s.documents...)
	found := false
	for i := range documents {
		if documents[i].ID == d.ID {
			documents[i] = d
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.documents = documents
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyDocuments)
}

// DeleteDocument removes the record with the given id. Admin only.
func (s *Service) DeleteDocument(ctx context.Context, session *auth.Session, id string) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}

	s.mu.Lock()
	documents := make([]models.Document, 0, len(s.documents))
	found := false
	for _, d := range s.documents {
		if d.ID == id {
			found = true
			continue
		}
		documents = append(documents, d)
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.documents = documents
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyDocuments)
}

// AddPatent appends a patent to the catalog. Admin only.
func (s *Service) AddPatent(ctx context.Context, session *auth.Session, p models.Patent) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrInvalidItem)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.PatentPending
	}
	if p.FilingDate == "" {
		p.FilingDate = s.now().Format("2006-01-02")
	}

	s.mu.Lock()
	for _, existing := range s.patents {
		if existing.ID == p.ID {
			s.mu.Unlock()
			return common.ErrDuplicateItemID
		}
	}
	s.patents = append(append([]models.Patent(nil), s.patents...), p)
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyPatents)
}

// UpdatePatent replaces the record with the same id. Admin only.
func (s *Service) UpdatePatent(ctx context.Context, session *auth.Session, p models.Patent) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}

	s.mu.Lock()
	patents := append([]models.Patent(nil), s.patents...)
	found := false
	for i := range patents {
		if patents[i].ID == p.ID {
			patents[i] = p
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.patents = patents
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyPatents)
}

// DeletePatent removes the record with the given id. Admin only.
func (s *Service) DeletePatent(ctx context.Context, session *auth.Session, id string) error {
	if !session.IsAdmin() {
		return common.ErrForbidden
	}

	s.mu.Lock()
	patents := make([]models.Patent, 0, len(s.patents))
	found := false
	for _, p := range s.patents {
		if p.ID == id {
			found = true
			continue
		}
		patents = append(patents, p)
	}
	if !found {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	s.patents = patents
	s.mu.Unlock()

	return s.persistCatalogs(ctx, common.KeyPatents)
}

// persistCatalogs syncs the changed collection, rebuilds the derived feed
// from the current state and syncs that too. Partial backend failure is
// reported by the engine's log, not as an error here.
func (s *Service) persistCatalogs(ctx context.Context, changedKey string) error {
	s.mu.RLock()
	videos := s.videos
	documents := s.documents
	patents := s.patents
	s.mu.RUnlock()

	var err error
	switch changedKey {
	case common.KeyVideos:
		_, err = s.engine.SyncData(ctx, changedKey, videos)
	case common.KeyDocuments:
		_, err = s.engine.SyncData(ctx, changedKey, documents)
	case common.KeyPatents:
		_, err = s.engine.SyncData(ctx, changedKey, patents)
	default:
		return common.ErrUnknownCatalog
	}
	if err != nil {
		return fmt.Errorf("sync %s: %w", changedKey, err)
	}
	s.notify(changedKey)

	return s.rebuildFeed(ctx)
}

// rebuildFeed derives the recent-updates list from the current collections
// and persists it.
func (s *Service) rebuildFeed(ctx context.Context) error {
	s.mu.RLock()
	videos := s.videos
	documents := s.documents
	patents := s.patents
	s.mu.RUnlock()

	updates := feed.BuildRecentUpdates(videos, documents, patents, s.feedLimit, s.now())

	s.mu.Lock()
	s.updates = updates
	s.mu.Unlock()

	if _, err := s.engine.SyncData(ctx, common.KeyRecentUpdates, updates); err != nil {
		return fmt.Errorf("sync recent updates: %w", err)
	}
	s.notify(common.KeyRecentUpdates)
	return nil
}

func videosEqual(a, b []models.Video) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func documentsEqual(a, b []models.Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func patentsEqual(a, b []models.Patent) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !patentEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// patentEqual compares field by field; Patent is not comparable because
// of the Inventors slice.
func patentEqual(a, b models.Patent) bool {
	if len(a.Inventors) != len(b.Inventors) {
		return false
	}
	for i := range a.Inventors {
		if a.Inventors[i] != b.Inventors[i] {
			return false
		}
	}
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Abstract == b.Abstract &&
		a.FilingDate == b.FilingDate &&
		a.PublicationDate == b.PublicationDate &&
		a.PatentNumber == b.PatentNumber &&
		a.Status == b.Status &&
		a.IsPremium == b.IsPremium
}
