package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()
	store.now = func() time.Time { return clock }

	for i := range 3 {
		res, err := store.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		clock = clock.Add(10 * time.Second)
	}

	t.Run("rejects once the window is full", func(t *testing.T) {
		res, err := store.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, 30, res.RetryAfter)
	})

	t.Run("keys are independent", func(t *testing.T) {
		res, err := store.Allow(ctx, "login:10.0.0.2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("oldest attempt slides out", func(t *testing.T) {
		clock = clock.Add(31 * time.Second)
		res, err := store.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("reset clears the key", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx, "login:10.0.0.1"))
		res, err := store.Allow(ctx, "login:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Remaining)
	})
}

func TestInMemoryStoreDropsIdleKeys(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()
	store.now = func() time.Time { return clock }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := store.Allow(ctx, "login:"+ip, 5, 30*time.Second)
		require.NoError(t, err)
	}
	require.Len(t, store.windows, 3)

	t.Run("idle windows are kept until the next sweep", func(t *testing.T) {
		clock = clock.Add(45 * time.Second)
		_, err := store.Allow(ctx, "login:10.0.0.4", 5, 30*time.Second)
		require.NoError(t, err)
		assert.Len(t, store.windows, 4)
	})

	t.Run("sweep removes keys with no live attempts", func(t *testing.T) {
		clock = clock.Add(20 * time.Second)
		_, err := store.Allow(ctx, "login:10.0.0.5", 5, 30*time.Second)
		require.NoError(t, err)
		assert.Len(t, store.windows, 2)
		assert.NotContains(t, store.windows, "login:10.0.0.1")
		assert.Contains(t, store.windows, "login:10.0.0.4")
		assert.Contains(t, store.windows, "login:10.0.0.5")
	})

	t.Run("swept key starts a fresh window", func(t *testing.T) {
		res, err := store.Allow(ctx, "login:10.0.0.1", 5, 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 4, res.Remaining)
	})
}
