package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every replica through
// Redis. Exceeding the window's budget blocks the key for the rest of the
// window.
type RedisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter returns a limiter storing counters under prefix.
func NewRedisLimiter(rdb redis.Cmdable, prefix string, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  int64(config.RequestsPerWindow),
		window: config.Window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + ":" + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, k, l.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis rate limit: %w", err)
		}
	}
	if count <= l.limit {
		return Decision{Allowed: true}, nil
	}

	retry, err := l.rdb.PTTL(ctx, k).Result()
	if err != nil || retry <= 0 {
		retry = l.window
	}
	return Decision{RetryAfter: retry}, nil
}
