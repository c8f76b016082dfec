package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLocker_SingleHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client)

	release, ok, err := locker.TryLock(ctx, "dispatch:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("dispatch:lock"))

	_, ok, err = locker.TryLock(ctx, "dispatch:lock", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("dispatch:lock"))

	_, ok, err = locker.TryLock(ctx, "dispatch:lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ReleaseAfterExpiryKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client)

	staleRelease, ok, err := locker.TryLock(ctx, "dispatch:lock", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = locker.TryLock(ctx, "dispatch:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists("dispatch:lock"), "stale release must not drop the new holder's lock")
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	_, ok, err := NewRedisLocker(client).TryLock(context.Background(), "dispatch:lock", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	release, ok, err := locker.TryLock(ctx, "a", 0)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = locker.TryLock(ctx, "a", 0)
	assert.False(t, ok)

	_, ok, _ = locker.TryLock(ctx, "b", 0)
	assert.True(t, ok, "keys are independent")

	require.NoError(t, release(ctx))
	require.NoError(t, release(ctx), "double release is harmless")

	_, ok, _ = locker.TryLock(ctx, "a", 0)
	assert.True(t, ok)
}
