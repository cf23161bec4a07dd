package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillswap/backend/internal/domain/providers"
	redisclient "github.com/skillswap/backend/internal/infrastructure/clients/redis"
)

func newTestAdapter(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisAdapter(redisclient.NewClientFromRedis(client)), mr
}

func TestRedisAdapter_GetSetDelete(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	_, err := adapter.Get(ctx, "analytics:summary")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, adapter.Set(ctx, "analytics:summary", []byte(`{"total_users":2}`), 60))
	got, err := adapter.Get(ctx, "analytics:summary")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_users":2}`, string(got))
	assert.Equal(t, time.Minute, mr.TTL("analytics:summary"))

	ok, err := adapter.Exists(ctx, "analytics:summary")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, adapter.Delete(ctx, "analytics:summary"))
	ok, err = adapter.Exists(ctx, "analytics:summary")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisAdapter_Expiry(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 1))
	mr.FastForward(2 * time.Second)

	_, err := adapter.Get(ctx, "k")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestRedisAdapter_DeletePattern(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("http:cache:users:%03d", i), "x"))
	}
	require.NoError(t, mr.Set("http:cache:messages:abc", "x"))
	require.NoError(t, mr.Set("analytics:summary", "x"))

	require.NoError(t, adapter.DeletePattern(ctx, "http:cache:users:*"))

	assert.Equal(t, []string{"analytics:summary", "http:cache:messages:abc"}, mr.Keys())
}

func TestRedisAdapter_Increment(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := adapter.Increment(ctx, "feedback:rate:alice", 3600)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, time.Hour, mr.TTL("feedback:rate:alice"))

	mr.FastForward(2 * time.Hour)
	got, err := adapter.Increment(ctx, "feedback:rate:alice", 3600)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "counter restarts after its window")
}
