package store

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often MemoryStore evicts expired entries.
const DefaultSweepInterval = time.Minute

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

func (e memoryEntry) expiredAt(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryStore is an in-process implementation of Store backed by a map.
// Expired entries are evicted by a background sweep, and additionally
// filtered out at read time so a stale entry is never returned between
// sweeps. State does not survive process restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time

	stop    chan struct{}
	stopped bool
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*memoryStoreConfig)

type memoryStoreConfig struct {
	sweepInterval time.Duration
	now           func() time.Time
}

// WithSweepInterval overrides how often the background sweep runs.
func WithSweepInterval(d time.Duration) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		if d > 0 {
			c.sweepInterval = d
		}
	}
}

// WithMemoryClock overrides the store's time source. Used by tests.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(c *memoryStoreConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewMemoryStore creates a memory store and starts its sweep goroutine.
// Callers own the store's lifecycle and should Close it when done.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	cfg := memoryStoreConfig{
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     cfg.now,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop(cfg.sweepInterval)
	return s
}

// Get returns a copy of the record stored at key, or (nil, nil) when the
// key is absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expiredAt(s.now()) {
		return nil, nil
	}

	rec := entry.rec
	if entry.rec.Events != nil {
		rec.Events = append([]int64(nil), entry.rec.Events...)
	}
	return &rec, nil
}

// Set stores a record, re-arming its TTL.
func (s *MemoryStore) Set(_ context.Context, key string, rec *Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	if rec.Events != nil {
		stored.Events = append([]int64(nil), rec.Events...)
	}
	s.entries[key] = memoryEntry{
		rec:       stored,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Increment atomically bumps the counter at key, creating it with the given
// TTL on first observation.
func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || entry.expiredAt(now) {
		s.entries[key] = memoryEntry{
			rec:       Record{Count: 1},
			expiresAt: now.Add(ttl),
		}
		return 1, nil
	}

	entry.rec.Count++
	s.entries[key] = entry
	return entry.rec.Count, nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the sweep goroutine.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	return nil
}

// Len reports the number of stored entries, including not-yet-swept expired
// ones. Used by tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep removes expired entries. It holds the store lock only for the
// duration of one pass over the map.
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if entry.expiredAt(now) {
			delete(s.entries, key)
		}
	}
}
