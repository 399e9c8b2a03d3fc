// Package cache stores long-term rent estimates keyed by address so repeated
// scoring runs over the same zip code do not spend API quota on the same lookups.
//
// Two backends are provided: Memory, an in-process map with TTL and size-based
// rotation, and Redis, for sharing estimates between processes.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rewired-gh/rentscore/internal/config"
)

// RentCache stores monthly rent estimates.
// Get reports ok=false on a miss or an expired entry.
type RentCache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, rent float64) error
}

// Key builds a cache key for an address, ignoring case and redundant whitespace.
func Key(address, city, state string) string {
	parts := []string{address, city, state}
	for i, p := range parts {
		parts[i] = strings.Join(strings.Fields(strings.ToLower(p)), " ")
	}
	return strings.Join(parts, "|")
}

// New builds the cache backend selected in the configuration.
// It returns a nil RentCache when caching is disabled.
func New(cfg config.CacheConfig) (RentCache, error) {
	switch cfg.Backend {
	case "none", "":
		return nil, nil
	case "memory":
		return NewMemory(cfg.TTL, cfg.MaxEntries), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Ping checks that the backend is reachable. Backends without a remote
// dependency always succeed.
func Ping(ctx context.Context, c RentCache) error {
	r, ok := c.(*Redis)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
