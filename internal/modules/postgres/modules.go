package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"sma_bot/internal/modules/config"
	"sma_bot/pkg/db"
	"sma_bot/pkg/logger"
)

// Module даёт *db.PgTxManager; без db_dsn: nil, журнал уходит в память.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.DB == "" {
					logger.Info("db_dsn is empty, signal journal stays in memory")
					return nil, nil
				}
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN:             cfg.DB,
					MaxConns:        4,
					MaxConnLifetime: 30 * time.Minute,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					poolMaster.Close()
					return nil, err
				}

				m := db.NewPgTxManager(poolMaster)
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						m.Close()
						return nil
					},
				})
				return m, nil
			},
		),
	)
}
