package authgw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "authgw:token:"

// RedisCache shares verification outcomes between replicas of a service.
// Values are JSON-encoded subjects keyed by token digest; expiry is left to
// Redis TTLs.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, token string) (Subject, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+digest(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Subject{}, false, nil
	}
	if err != nil {
		return Subject{}, false, fmt.Errorf("read token cache: %w", err)
	}

	var subject Subject
	if err := json.Unmarshal(raw, &subject); err != nil {
		return Subject{}, false, fmt.Errorf("decode cached subject: %w", err)
	}
	return subject, true, nil
}

func (c *RedisCache) Put(ctx context.Context, token string, subject Subject, ttl time.Duration) error {
	raw, err := json.Marshal(subject)
	if err != nil {
		return fmt.Errorf("encode subject: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+digest(token), raw, ttl).Err(); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Evict(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+digest(token)).Err(); err != nil {
		return fmt.Errorf("evict token cache: %w", err)
	}
	return nil
}
