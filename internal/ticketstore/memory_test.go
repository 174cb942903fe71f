package ticketstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryStoreForTest(t *testing.T) (Store, func(time.Duration)) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemoryStore().WithClock(clock.Now), clock.Advance
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, newMemoryStoreForTest)
}

func TestMemoryStore_Eviction(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore().WithClock(clock.Now)

	t.Run("Success_ExpiredEntryEvictedOnAccess", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "lazy", "value", time.Second))
		clock.Advance(time.Second)

		_, err := store.Get(ctx, "lazy")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("Success_SweepRemovesUntouchedEntries", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		store := NewMemoryStore().WithClock(clock.Now)

		require.NoError(t, store.Put(ctx, "stale", "value", time.Second))
		clock.Advance(time.Minute)

		for i := 0; i < sweepInterval-1; i++ {
			require.NoError(t, store.Put(ctx, "fresh", "value", time.Hour))
		}
		assert.Equal(t, 1, store.Len())
	})
}
