package cache

import (
	"context"

	tradeapp "github.com/erp/returns/internal/application/trade"
	"github.com/erp/returns/internal/domain/shared"
	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the cache-backed components the service wires in
type Stores struct {
	Idempotency shared.IdempotencyStore
	ReturnCount tradeapp.ReturnCountCache
	client      *redis.Client
}

// Close closes the Redis client when one is in use
func (s *Stores) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// UsesRedis reports whether the stores are Redis-backed
func (s *Stores) UsesRedis() bool {
	return s.client != nil
}

// NewStores builds Redis-backed stores when Redis is enabled and reachable.
// Outside production an unreachable Redis falls back to in-memory stores.
func NewStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if cfg.Redis.Enabled {
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			logger.Info("using Redis for idempotency and portal counters", zap.String("addr", cfg.Redis.Addr()))
			return &Stores{
				Idempotency: NewRedisIdempotencyStore(client, ""),
				ReturnCount: NewRedisReturnCountCache(client, cfg.Portal.CountCacheTTL),
				client:      client,
			}, nil
		}
		if cfg.IsProduction() {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}

	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		ReturnCount: NewInMemoryReturnCountCache(cfg.Portal.CountCacheTTL),
	}, nil
}
