package components

import (
	"context"
	"log/slog"

	"parking-lot-manager/internal/infra/cache"
	"parking-lot-manager/internal/infra/memstore"
	"parking-lot-manager/internal/infra/uow"
	"parking-lot-manager/internal/pkg/clock"
	"parking-lot-manager/internal/pkg/config"
	"parking-lot-manager/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		clock.NewRealClock,
		NewUnitOfWork,
		NewCacheIndex,
	),
)

// NewUnitOfWork picks the backend named by STORE_DRIVER. pool is nil for
// the memory driver.
func NewUnitOfWork(cfg config.Config, pool *pgxpool.Pool) shared.UnitOfWork {
	if cfg.Store.Driver == "memory" || pool == nil {
		return memstore.NewUoW(memstore.New())
	}
	return uow.NewPostgresUoW(pool)
}

// NewCacheIndex uses Redis when REDIS_ADDR is set and an in-process index
// otherwise.
func NewCacheIndex(lc fx.Lifecycle, cfg config.Config, clk clock.Clock) (shared.CacheIndex, error) {
	if cfg.Redis.Addr == "" {
		slog.Info("using in-memory cache index")
		return cache.NewMemoryIndex(clk), nil
	}

	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	slog.Info("using redis cache index", "addr", cfg.Redis.Addr)
	return cache.NewRedisIndex(client), nil
}
