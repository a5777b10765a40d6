package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window counter per key. Good enough for
// keeping form-spam off the mutating actions; not a fairness mechanism.
type RateLimiter struct {
	client *goredis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *goredis.Client, limit int64, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window == 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow increments the counter for key and reports whether the caller is
// still within the window's budget.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	fullKey := "ratelimit:" + key

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= r.limit, nil
}
