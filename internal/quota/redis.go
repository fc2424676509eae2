package quota

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	c *redis.Client
}

func NewRedisStore(c *redis.Client) *RedisStore {
	return &RedisStore{c: c}
}

func (r *RedisStore) Count(ctx context.Context, key string) (int64, error) {
	n, err := r.c.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	return n, err
}

// Increment relies on INCR being atomic. Only the caller that moved the
// counter from 0 to 1 starts the window
func (r *RedisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := r.c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if n == 1 {
		if err := r.c.Expire(ctx, key, ttl).Err(); err != nil {
			return n, err
		}
	}

	return n, nil
}
