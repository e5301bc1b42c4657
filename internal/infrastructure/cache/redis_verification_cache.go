package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ippis:verification:"

// RedisVerificationCache stores verification results in Redis.
// Suitable when several server instances share one provider quota.
type RedisVerificationCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisVerificationCache connects to Redis and pings it
func NewRedisVerificationCache(ctx context.Context, cfg RedisConfig) (*RedisVerificationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisVerificationCacheWithClient(client, ""), nil
}

// NewRedisVerificationCacheWithClient wraps an existing client
func NewRedisVerificationCacheWithClient(client *redis.Client, keyPrefix string) *RedisVerificationCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisVerificationCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached result for key
func (c *RedisVerificationCache) Get(ctx context.Context, key string) (*registration.VerificationResult, bool, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read verification cache: %w", err)
	}

	var result registration.VerificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached verification: %w", err)
	}
	return &result, true, nil
}

// Set stores result under key with ttl
func (c *RedisVerificationCache) Set(ctx context.Context, key string, result *registration.VerificationResult, ttl time.Duration) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode verification: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write verification cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisVerificationCache) Close() error {
	return c.client.Close()
}

var _ VerificationCache = (*RedisVerificationCache)(nil)
