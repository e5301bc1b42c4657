package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ippis/backend/internal/domain/registration"
	"github.com/ippis/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// VerificationCache stores verified NIN lookups
type VerificationCache interface {
	Get(ctx context.Context, key string) (*registration.VerificationResult, bool, error)
	Set(ctx context.Context, key string, result *registration.VerificationResult, ttl time.Duration) error
	Close() error
}

// Factory creates verification caches based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory cache.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when Redis is enabled and reachable, otherwise an in-memory one
func (f *Factory) Create(ctx context.Context) (VerificationCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory verification cache")
		return NewInMemoryVerificationCache(), nil
	}

	c, err := NewRedisVerificationCache(ctx, RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis verification cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for verification cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory verification cache", zap.Error(err))
	return NewInMemoryVerificationCache(), nil
}
