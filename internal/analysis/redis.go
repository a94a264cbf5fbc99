package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "assistant:analysis:latest"

// RedisCache shares the slot between service replicas.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, now: time.Now}
}

func (c *RedisCache) Get(ctx context.Context) (*Entry, error) {
	raw, err := c.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis cache: %w", err)
	}

	// Redis expires the key; Get never deletes, so it cannot drop a concurrent Set.
	// The age check only covers clock skew between replicas.
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, nil
	}
	if c.now().Sub(entry.ComputedAt) > c.ttl {
		return nil, nil
	}
	return &entry, nil
}

func (c *RedisCache) Set(ctx context.Context, kind Kind, report Report) error {
	body, err := json.Marshal(Entry{Kind: kind, Report: report, ComputedAt: c.now()})
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, redisKey, body, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write analysis cache: %w", err)
	}
	return nil
}
