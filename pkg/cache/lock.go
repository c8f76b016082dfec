package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReleaseFunc releases a lock obtained from a locker
type ReleaseFunc func(ctx context.Context) error

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was re-acquired by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements a single-holder lock with SET NX and a TTL
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a lock provider backed by Redis
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// TryLock attempts to take key for ttl without waiting. ok is false when
// someone else holds the lock.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, bool, error) {
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}

// LocalLocker is the in-process fallback used when Redis is not configured.
// It only serializes holders inside one process; ttl is ignored.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) TryLock(_ context.Context, key string, _ time.Duration) (ReleaseFunc, bool, error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, false, nil
	}

	var once sync.Once
	release := func(context.Context) error {
		once.Do(m.Unlock)
		return nil
	}
	return release, true, nil
}
