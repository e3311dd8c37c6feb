package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockKey = "classtrack:scheduler:lock"

// Locker guards against overlapping scheduler passes.
type Locker interface {
	// TryLock claims the run lock; false means another pass holds it.
	TryLock(ctx context.Context) (bool, error)
	// Release frees a lock claimed by TryLock.
	Release(ctx context.Context)
}

// RedisLocker implements Locker with a SETNX key carrying a TTL, so a crashed
// run cannot wedge the scheduler past the TTL.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a locker over an existing redis client.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, lockKey, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context) {
	l.client.Del(ctx, lockKey)
}
