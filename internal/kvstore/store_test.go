package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Minute))

	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	val, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", val)

	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_GetDelIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "code", "1234", time.Minute))

	val, found, err := store.GetDel(ctx, "code")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1234", val)

	_, found, err = store.GetDel(ctx, "code")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Minute))

	ttl, found, err := store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(30 * time.Second)

	ttl, found, err = store.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 30*time.Second, ttl)

	_, found, err = store.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_ExpiredKeyIsAbsent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetWithTTL(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	ok, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
