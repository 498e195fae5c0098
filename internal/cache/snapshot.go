package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ppiankov/leadradar/internal/model"
	"github.com/ppiankov/leadradar/internal/source"
)

// MinRefreshInterval is the floor for the background refresh cadence
const MinRefreshInterval = 60 * time.Second

// entry is one immutable snapshot generation. Readers always observe a whole
// generation: refresh swaps the pointer, it never mutates records in place.
type entry struct {
	records   []model.RawRecord
	fetchedAt time.Time
}

// Store owns the raw snapshot and its lifecycle: TTL expiry, mirror
// read-through and write-behind, and the cancellable background refresh loop.
type Store struct {
	src        source.RawSource
	mirror     Mirror // nil for the memory-only configuration
	ttl        time.Duration
	maxRecords int
	key        string
	log        *slog.Logger

	snap atomic.Pointer[entry]
	mu   sync.Mutex // serializes refreshes so concurrent misses collapse to one fetch

	refreshInterval time.Duration
	cancel          context.CancelFunc
	done            chan struct{}
}

// NewStore builds a snapshot store. mirror may be nil; that is a fully
// functional memory-only configuration, not an error.
func NewStore(src source.RawSource, mirror Mirror, cfg model.CacheConfig, refresh model.RefreshConfig, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	interval := refresh.Interval
	if interval < MinRefreshInterval {
		interval = MinRefreshInterval
	}
	maxRecords := cfg.MaxProperties
	if maxRecords <= 0 {
		maxRecords = 500
	}
	return &Store{
		src:             src,
		mirror:          mirror,
		ttl:             cfg.TTL,
		maxRecords:      maxRecords,
		key:             Key(cfg.Namespace),
		log:             log,
		refreshInterval: interval,
	}
}

// Get returns the raw snapshot, fetching from the mirror or the upstream
// source when it is empty, stale, or forceRefresh is set. Concurrent misses
// collapse into a single upstream fetch.
func (s *Store) Get(ctx context.Context, forceRefresh bool) ([]model.RawRecord, error) {
	if !forceRefresh {
		if e := s.snap.Load(); e != nil && time.Since(e.fetchedAt) < s.ttl {
			return e.records, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the lock: another caller may have refreshed while we
	// were waiting.
	if !forceRefresh {
		if e := s.snap.Load(); e != nil && time.Since(e.fetchedAt) < s.ttl {
			return e.records, nil
		}
		if records, ok := s.loadFromMirror(ctx); ok {
			s.snap.Store(&entry{records: records, fetchedAt: time.Now()})
			s.log.Debug("snapshot loaded from mirror", "records", len(records))
			return records, nil
		}
	}

	records, err := s.src.FetchAll(ctx, s.maxRecords)
	if err != nil {
		return nil, fmt.Errorf("fetch properties: %w", err)
	}
	s.snap.Store(&entry{records: records, fetchedAt: time.Now()})
	s.storeInMirror(ctx, records)
	s.log.Debug("snapshot fetched from provider", "records", len(records))
	return records, nil
}

// Refresh forces a fresh upstream fetch, replacing the snapshot
func (s *Store) Refresh(ctx context.Context) error {
	_, err := s.Get(ctx, true)
	return err
}

// loadFromMirror attempts a mirror read. Every failure mode, transport
// error, bad JSON, wrong shape, is logged and reported as a miss.
func (s *Store) loadFromMirror(ctx context.Context) ([]model.RawRecord, bool) {
	if s.mirror == nil {
		return nil, false
	}
	payload, found, err := s.mirror.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("mirror read failed", "key", s.key, "error", err)
		return nil, false
	}
	if !found || len(payload) == 0 {
		return nil, false
	}
	var records []model.RawRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		s.log.Warn("invalid mirror payload; ignoring", "key", s.key, "error", err)
		return nil, false
	}
	return records, true
}

// storeInMirror best-effort persists the snapshot at twice the local TTL so
// a sibling process can warm up without an upstream fetch
func (s *Store) storeInMirror(ctx context.Context, records []model.RawRecord) {
	if s.mirror == nil {
		return
	}
	payload, err := json.Marshal(records)
	if err != nil {
		s.log.Warn("marshal snapshot for mirror failed", "error", err)
		return
	}
	if err := s.mirror.Set(ctx, s.key, payload, 2*s.ttl); err != nil {
		s.log.Warn("mirror write failed", "key", s.key, "error", err)
	}
}

// Start launches the background refresh loop. Calling Start on a running
// store is a no-op.
func (s *Store) Start() {
	if s.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.refreshLoop(ctx)
}

// Close cancels the refresh loop and blocks until it has exited. Safe to call
// when the loop was never started.
func (s *Store) Close() {
	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// refreshLoop force-refreshes on its interval until cancelled. A failed
// refresh is logged and the loop continues; stale data keeps serving reads.
func (s *Store) refreshLoop(ctx context.Context) {
	defer close(s.done)
	s.log.Info("starting snapshot refresh loop", "interval", s.refreshInterval)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx); err != nil {
			s.log.Error("snapshot refresh failed", "error", err)
		} else {
			s.log.Debug("snapshot refresh complete")
		}
		select {
		case <-ctx.Done():
			s.log.Info("stopping snapshot refresh loop")
			return
		case <-ticker.C:
		}
	}
}
