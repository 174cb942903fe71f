package ticketstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/identity/internal/errors"
)

// storeFactory returns a fresh Store plus a function that moves its notion of time forward.
type storeFactory func(t *testing.T) (Store, func(time.Duration))

// runStoreTests exercises the behavior every Store implementation must share.
func runStoreTests(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("Success_PutGet", func(t *testing.T) {
		store, _ := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))

		entry, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "value", entry.Value)
		assert.Equal(t, int64(0), entry.Counter)
	})

	t.Run("Error_GetMissing", func(t *testing.T) {
		store, _ := newStore(t)

		entry, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.Nil(t, entry)
	})

	t.Run("Error_GetExpired", func(t *testing.T) {
		store, advance := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))
		advance(time.Minute + time.Second)

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Success_PutOverwritesAndResetsCounter", func(t *testing.T) {
		store, _ := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "first", time.Minute))
		_, err := store.Increment(ctx, "k")
		require.NoError(t, err)
		_, err = store.Increment(ctx, "k")
		require.NoError(t, err)

		require.NoError(t, store.Put(ctx, "k", "second", time.Minute))

		entry, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "second", entry.Value)
		assert.Equal(t, int64(0), entry.Counter)
	})

	t.Run("Success_Delete", func(t *testing.T) {
		store, _ := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))
		require.NoError(t, store.Delete(ctx, "k"))
		require.NoError(t, store.Delete(ctx, "k"))

		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Success_CompareAndDelete", func(t *testing.T) {
		store, _ := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))

		deleted, err := store.CompareAndDelete(ctx, "k", "other")
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = store.CompareAndDelete(ctx, "k", "value")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.CompareAndDelete(ctx, "k", "value")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("Success_CompareAndDeleteExpired", func(t *testing.T) {
		store, advance := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))
		advance(2 * time.Minute)

		deleted, err := store.CompareAndDelete(ctx, "k", "value")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("Success_Increment", func(t *testing.T) {
		store, _ := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))

		for want := int64(1); want <= 3; want++ {
			got, err := store.Increment(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		entry, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(3), entry.Counter)
		assert.Equal(t, "value", entry.Value)
	})

	t.Run("Error_IncrementMissingDoesNotCreate", func(t *testing.T) {
		store, _ := newStore(t)

		_, err := store.Increment(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Error_IncrementExpired", func(t *testing.T) {
		store, advance := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))
		advance(2 * time.Minute)

		_, err := store.Increment(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Success_NoTTLKeepsEntry", func(t *testing.T) {
		store, advance := newStore(t)

		require.NoError(t, store.Put(ctx, "k", "value", 0))
		advance(24 * time.Hour)

		entry, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "value", entry.Value)
	})

	t.Run("Success_ConcurrentIncrementIsAtomic", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))

		const workers = 50
		var wg sync.WaitGroup
		seen := make([]atomic.Bool, workers+1)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := store.Increment(ctx, "k")
				if assert.NoError(t, err) && assert.LessOrEqual(t, n, int64(workers)) {
					assert.False(t, seen[n].Swap(true), "counter value %d returned twice", n)
				}
			}()
		}
		wg.Wait()

		entry, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(workers), entry.Counter)
	})

	t.Run("Success_ConcurrentCompareAndDeleteSingleWinner", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, store.Put(ctx, "k", "value", time.Minute))

		var wg sync.WaitGroup
		var winners atomic.Int32

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				deleted, err := store.CompareAndDelete(ctx, "k", "value")
				if assert.NoError(t, err) && deleted {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
	})
}
