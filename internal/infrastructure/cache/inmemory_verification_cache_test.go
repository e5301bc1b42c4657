package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryVerificationCache_GetSet(t *testing.T) {
	c := NewInMemoryVerificationCache()
	defer c.Close()

	ctx := context.Background()
	result := &registration.VerificationResult{Verified: true, Message: "ok"}

	t.Run("miss on unknown key", func(t *testing.T) {
		got, found, err := c.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k1", result, time.Hour))

		got, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Same(t, result, got)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k2", result, 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		_, found, err := c.Get(ctx, "k2")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestInMemoryVerificationCache_Cleanup(t *testing.T) {
	c := NewInMemoryVerificationCache()
	defer c.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", &registration.VerificationResult{}, time.Minute))
	require.NoError(t, c.Set(ctx, "long", &registration.VerificationResult{}, time.Hour))
	assert.Equal(t, 2, c.Size())

	now = now.Add(2 * time.Minute)
	c.cleanup()

	assert.Equal(t, 1, c.Size())
	_, found, _ := c.Get(ctx, "long")
	assert.True(t, found)
}

func TestInMemoryVerificationCache_Concurrent(t *testing.T) {
	c := NewInMemoryVerificationCache()
	defer c.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k" + string(rune('a'+i%26))
			_ = c.Set(ctx, key, &registration.VerificationResult{Verified: true}, time.Hour)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 26, c.Size())
}

func TestInMemoryVerificationCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryVerificationCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
