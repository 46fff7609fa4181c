package marketdata

import (
	"go.uber.org/fx"

	"sma_bot/internal/modules/marketdata/service"
)

// Module даёт OKX клиента и источник баров по market.source.
func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			service.NewClient, // *service.Client
			service.NewSource, // service.Source (csv | okx)
		),
	)
}
