package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pollroom/internal/config"
)

// NewClient creates a Redis client from config. Callers own the client and
// pass it explicitly; there is no package-level singleton.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies connectivity with a short deadline.
func Ping(ctx context.Context, client *goredis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
