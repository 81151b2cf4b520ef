package cache

import (
	"go.uber.org/zap"

	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/infrastructure/config"
)

// NewIdempotencyStore creates the idempotency store the deployment asked
// for: Redis when enabled, otherwise in-memory. When Redis is enabled but
// unreachable the in-memory store is used so a cache outage cannot block
// payments; tokens then only deduplicate within one process.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Enabled {
		logger.Info("using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", cfg.RedisAddr()),
			zap.Error(err))
		return NewInMemoryIdempotencyStore(), nil
	}

	logger.Info("using redis idempotency store", zap.String("addr", cfg.RedisAddr()))
	return store, nil
}
