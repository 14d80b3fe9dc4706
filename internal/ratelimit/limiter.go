package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cryptodash:"

// Limiter is a fixed-window request limiter backed by Redis
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter allows limit requests per window for each key
func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Limit returns the number of requests allowed per window
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the window length
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow checks if a request is allowed for the given key
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, error) {
	slot := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%sratelimit:%s:%d", keyPrefix, key, slot)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	count := incr.Val()

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= int64(l.limit), remaining, nil
}

// IncrementUsage increments the lifetime request counter of key
func (l *Limiter) IncrementUsage(ctx context.Context, key string) (int64, error) {
	return l.client.Incr(ctx, keyPrefix+"usage:"+key).Result()
}

// GetUsage returns the lifetime request count of key
func (l *Limiter) GetUsage(ctx context.Context, key string) (int64, error) {
	count, err := l.client.Get(ctx, keyPrefix+"usage:"+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}
