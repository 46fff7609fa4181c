package runner

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	busservice "sma_bot/internal/modules/bus/service"
	"sma_bot/internal/modules/config"
	healthservice "sma_bot/internal/modules/health/service"
	journalservice "sma_bot/internal/modules/journal/service"
	"sma_bot/internal/modules/marketdata/service"
	"sma_bot/internal/notify"
	"sma_bot/internal/strategy"
	"sma_bot/pkg/logger"
)

type Params struct {
	fx.In

	Cfg       *config.Config
	Hub       *strategy.Hub
	State     *healthservice.State
	Journal   journalservice.Journal
	Publisher busservice.Publisher
	Notify    *notify.SignalSink
}

func NewRunner(p Params) *Runner {
	return New(p.Hub, p.Cfg.Market.Symbols, p.State,
		NamedSink{Name: "journal", Sink: p.Journal},
		NamedSink{Name: "bus", Sink: p.Publisher},
		NamedSink{Name: "notify", Sink: p.Notify},
	)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewRunner, // *Runner
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			sd fx.Shutdowner,
			r *Runner,
			src service.Source,
		) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						defer close(done)
						err := r.Run(ctx, src)
						if err != nil && !errors.Is(err, context.Canceled) {
							logger.Error("runner stopped: %v", err)
						}
						if ctx.Err() == nil {
							// источник иссяк сам: гасим приложение
							_ = sd.Shutdown()
						}
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
					}
					return nil
				},
			})
		}),
	)
}
