package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache key patterns:
// - view:polls            - poll listing, 60s TTL
// - view:poll:{poll_id}   - poll detail (poll + counts), 60s TTL
//
// Mutating actions invalidate the affected keys; TTL is a backstop.

type ViewCacheConfig struct {
	TTL time.Duration
}

func DefaultViewCacheConfig() ViewCacheConfig {
	return ViewCacheConfig{TTL: time.Minute}
}

// ViewCache caches the data backing read views in Redis as JSON.
type ViewCache struct {
	client *goredis.Client
	config ViewCacheConfig
}

func NewViewCache(client *goredis.Client, config ViewCacheConfig) *ViewCache {
	if config.TTL == 0 {
		config = DefaultViewCacheConfig()
	}
	return &ViewCache{client: client, config: config}
}

func PollListKey() string {
	return "view:polls"
}

func PollDetailKey(pollID string) string {
	return "view:poll:" + pollID
}

// Get unmarshals the cached value into dest. The bool reports a hit.
func (c *ViewCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ViewCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.config.TTL).Err()
}

func (c *ViewCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
