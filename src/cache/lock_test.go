package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	t.Run("acquires when absent", func(t *testing.T) {
		store := NewMemoryStore()
		ok, err := AcquireLock(ctx, store, "lock/accounts", "refresh", time.Minute, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects while held", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := AcquireLock(ctx, store, "lock/accounts", "refresh", time.Minute, now)
		require.NoError(t, err)

		ok, err := AcquireLock(ctx, store, "lock/accounts", "other", time.Minute, now.Add(30*time.Second))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reclaims after expiry", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := AcquireLock(ctx, store, "lock/accounts", "refresh", time.Minute, now)
		require.NoError(t, err)

		ok, err := AcquireLock(ctx, store, "lock/accounts", "other", time.Minute, now.Add(61*time.Second))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reclaims malformed payload", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "lock/accounts", []byte("not a lock")))

		ok, err := AcquireLock(ctx, store, "lock/accounts", "refresh", time.Minute, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release frees the lock", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := AcquireLock(ctx, store, "lock/accounts", "refresh", time.Minute, now)
		require.NoError(t, err)
		require.NoError(t, ReleaseLock(ctx, store, "lock/accounts"))

		ok, err := AcquireLock(ctx, store, "lock/accounts", "other", time.Minute, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
