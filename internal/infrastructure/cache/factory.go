package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MetricsCache is the report cache produced by the factory
type MetricsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// Factory creates a metrics cache based on configuration
type Factory struct {
	redisConfig           RedisConfig
	redisEnabled          bool
	logger                *zap.Logger
	allowInMemoryFallback bool
	cleanupInterval       time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithRedis enables the Redis backend
func WithRedis(cfg RedisConfig) FactoryOption {
	return func(f *Factory) {
		f.redisConfig = cfg
		f.redisEnabled = true
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithCleanupInterval sets the eviction period of the in-memory cache
func WithCleanupInterval(d time.Duration) FactoryOption {
	return func(f *Factory) {
		f.cleanupInterval = d
	}
}

// NewFactory creates a new factory
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		cleanupInterval:       time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a Redis cache when enabled and reachable, otherwise an in-memory one
func (f *Factory) Create(ctx context.Context) (MetricsCache, error) {
	if !f.redisEnabled {
		f.logger.Info("using in-memory metrics cache")
		return NewInMemoryMetricsCache(f.cleanupInterval), nil
	}

	c, err := NewRedisMetricsCache(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis metrics cache", zap.String("addr", f.redisConfig.Addr))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for metrics cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory metrics cache. "+
		"Cached reports will not be shared between instances.",
		zap.Error(err),
	)
	return NewInMemoryMetricsCache(f.cleanupInterval), nil
}
