package courses

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/atlas-lms/atlas/internal/authz"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	require.False(t, ok)

	course := &Course{ID: 1, Title: "Go from Scratch", Status: authz.StatusApproved, OwnerID: 7}
	cache.Set(ctx, course)

	got, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	require.Equal(t, course.Title, got.Title)
	require.Equal(t, course.Status, got.Status)

	cache.Invalidate(ctx, 1)
	_, ok = cache.Get(ctx, 1)
	require.False(t, ok)
}

func TestCacheNilSafe(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, ok := cache.Get(ctx, 1)
	require.False(t, ok)
	cache.Set(ctx, &Course{ID: 1})
	cache.Invalidate(ctx, 1)
}
