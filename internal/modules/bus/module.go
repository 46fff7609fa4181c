package bus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"sma_bot/internal/models"
	"sma_bot/internal/modules/bus/service"
	"sma_bot/internal/modules/config"
	"sma_bot/pkg/logger"
)

func NewPublisher(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, run *models.Run) (service.Publisher, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("redis.addr is empty, signal bus disabled")
		return service.Noop{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	p := service.NewRedisPublisher(rdb, run.ID, cfg.Redis.Channel, cfg.Redis.Stream)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return p.Close()
		},
	})
	return p, nil
}

func Module() fx.Option {
	return fx.Module("bus",
		fx.Provide(
			NewPublisher,
		),
	)
}
