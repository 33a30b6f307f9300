package cache

import (
	"fmt"

	"github.com/littlelemon/menu/internal/domain/shared"
	"github.com/littlelemon/menu/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SeedGuardFactory creates seed guards based on configuration
type SeedGuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SeedGuardFactoryOption is a functional option for configuring the factory
type SeedGuardFactoryOption func(*SeedGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SeedGuardFactoryOption {
	return func(f *SeedGuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory guard
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) SeedGuardFactoryOption {
	return func(f *SeedGuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSeedGuardFactory creates a new factory
func NewSeedGuardFactory(cfg config.RedisConfig, opts ...SeedGuardFactoryOption) *SeedGuardFactory {
	f := &SeedGuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisGuard creates a Redis-backed guard
func (f *SeedGuardFactory) CreateRedisGuard() (shared.SeedGuard, error) {
	guard, err := NewRedisSeedGuard(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis seed guard: %w", err)
	}
	return guard, nil
}

// CreateInMemoryGuard creates a process-local guard
func (f *SeedGuardFactory) CreateInMemoryGuard() shared.SeedGuard {
	return NewInMemorySeedGuard()
}

// CreateGuard returns a Redis guard when Redis is enabled and reachable,
// otherwise an in-memory guard (unless fallback is disabled).
func (f *SeedGuardFactory) CreateGuard() (shared.SeedGuard, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory seed guard")
		return f.CreateInMemoryGuard(), nil
	}

	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis seed guard",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port),
		)
		return guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for seed guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory seed guard. "+
		"Concurrent instances sharing a database may seed twice.",
		zap.Error(err),
	)
	return f.CreateInMemoryGuard(), nil
}
