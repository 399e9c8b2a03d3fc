package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rentscore:rent:"

// Redis is a rent cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client. A non-positive ttl stores keys without expiry.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl < 0 {
		ttl = 0
	}
	return &Redis{client: client, ttl: ttl}
}

// Get returns the cached rent for key.
func (r *Redis) Get(ctx context.Context, key string) (float64, bool, error) {
	rent, err := r.client.Get(ctx, keyPrefix+key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	return rent, true, nil
}

// Set stores rent under key with the configured ttl.
func (r *Redis) Set(ctx context.Context, key string, rent float64) error {
	if err := r.client.Set(ctx, keyPrefix+key, rent, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
