package strategy

import (
	"go.uber.org/fx"

	"sma_bot/internal/modules/config"
)

func NewHubFromConfig(cfg *config.Config) (*Hub, error) {
	return NewHub(cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod)
}

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			NewHubFromConfig, // *Hub, общий для всех символов
		),
	)
}
