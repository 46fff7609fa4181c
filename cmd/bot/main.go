package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"sma_bot/internal/models"
	"sma_bot/internal/modules/bus"
	"sma_bot/internal/modules/config"
	"sma_bot/internal/modules/health"
	"sma_bot/internal/modules/journal"
	"sma_bot/internal/modules/marketdata"
	"sma_bot/internal/modules/postgres"
	"sma_bot/internal/notify"
	"sma_bot/internal/runner"
	"sma_bot/internal/strategy"
	"sma_bot/pkg/logger"
	"sma_bot/pkg/tracing"
)

// initObservability поднимает zap и jaeger до остальных модулей.
func initObservability(lc fx.Lifecycle, cfg *config.Config, run *models.Run) error {
	if _, err := logger.Init(cfg.Log.Level, cfg.Service.Name); err != nil {
		return err
	}
	tracing.SetServiceName(cfg.Service.Name)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}

	short, long := cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod
	logger.Info("run %s: source=%s symbols=%v timeframe=%s sma=%d/%d",
		run.ID, cfg.Market.Source, cfg.Market.Symbols, cfg.Market.Timeframe, short, long)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			logger.Sync()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			models.NewRun,
		),
		config.Module(),
		fx.Module("observability", fx.Invoke(initObservability)),
		postgres.Module(),
		journal.Module(),
		bus.Module(),
		strategy.Module(),
		notify.Module(),
		health.Module(),
		marketdata.Module(),
		runner.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
