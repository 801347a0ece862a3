package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedClock is a test clock safe to read from the sweep goroutine.
type lockedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *lockedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *lockedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryStore(t *testing.T) (*MemoryStore, *lockedClock) {
	t.Helper()

	clock := &lockedClock{now: time.Date(2024, time.June, 23, 10, 15, 30, 0, time.UTC)}
	s := NewMemoryStore(
		WithMemoryClock(clock.Now),
		WithSweepInterval(time.Hour),
	)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func TestMemoryStore_GetAbsentKey(t *testing.T) {
	s, _ := newTestMemoryStore(t)

	rec, err := s.Get(context.Background(), "api:10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStore_SetGetRoundTrip(t *testing.T) {
	s, clock := newTestMemoryStore(t)
	ctx := context.Background()

	in := &Record{
		Count:       3,
		WindowStart: clock.Now(),
		Tokens:      7.5,
		Events:      []int64{1, 2, 3},
	}
	require.NoError(t, s.Set(ctx, "api:10.0.0.1", in, time.Minute))

	out, err := s.Get(ctx, "api:10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in, out)

	// The returned record is a copy; mutating it must not leak back.
	out.Events[0] = 99
	again, err := s.Get(ctx, "api:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Events[0])
}

func TestMemoryStore_ReadTimeExpiry(t *testing.T) {
	s, clock := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "api:10.0.0.1", &Record{Count: 1}, time.Second))

	// Expired but not yet swept: the entry is still held...
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, s.Len())

	// ...but never returned.
	rec, err := s.Get(ctx, "api:10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStore_SetReArmsTTL(t *testing.T) {
	s, clock := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "api:10.0.0.1", &Record{Count: 1}, time.Second))

	clock.Advance(900 * time.Millisecond)
	require.NoError(t, s.Set(ctx, "api:10.0.0.1", &Record{Count: 2}, time.Second))

	// The first TTL would have lapsed by now; the rewrite re-armed it.
	clock.Advance(500 * time.Millisecond)
	rec, err := s.Get(ctx, "api:10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(2), rec.Count)
}

func TestMemoryStore_Increment(t *testing.T) {
	s, clock := newTestMemoryStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Increment(ctx, "api:10.0.0.1", time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Expiry restarts the counter from one.
	clock.Advance(2 * time.Second)
	got, err := s.Increment(ctx, "api:10.0.0.1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestMemoryStore_Delete(t *testing.T) {
	s, _ := newTestMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "api:10.0.0.1", &Record{Count: 1}, time.Minute))
	require.NoError(t, s.Delete(ctx, "api:10.0.0.1"))

	rec, err := s.Get(ctx, "api:10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete(ctx, "api:10.0.0.1"))
}

func TestMemoryStore_SweepEvictsExpired(t *testing.T) {
	clock := &lockedClock{now: time.Date(2024, time.June, 23, 10, 15, 30, 0, time.UTC)}
	s := NewMemoryStore(
		WithMemoryClock(clock.Now),
		WithSweepInterval(5*time.Millisecond),
	)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "api:stale", &Record{Count: 1}, time.Second))
	require.NoError(t, s.Set(ctx, "api:fresh", &Record{Count: 1}, time.Hour))

	clock.Advance(2 * time.Second)

	assert.Eventually(t, func() bool {
		return s.Len() == 1
	}, time.Second, 10*time.Millisecond)

	rec, err := s.Get(ctx, "api:fresh")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
