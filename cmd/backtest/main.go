package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sma_bot/internal/modules/config"
	"sma_bot/internal/modules/marketdata/service"
	"sma_bot/internal/runner"
	"sma_bot/internal/strategy"
	"sma_bot/pkg/logger"
)

func main() {
	// проверка после флагов: env вроде SHORT_PERIOD=90 лечится через -short
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}

	var (
		csvPath    = flag.String("csv", cfg.Market.CSVPath, "price history CSV")
		symbol     = flag.String("symbol", firstSymbol(cfg), "symbol written into signals")
		skipRows   = flag.Int("skip", cfg.Market.CSVSkipRows, "header rows to skip")
		short      = flag.Int("short", cfg.Strategy.ShortPeriod, "short SMA period")
		long       = flag.Int("long", cfg.Strategy.LongPeriod, "long SMA period")
		reportPath = flag.String("report", cfg.Report.Path, "YAML report path, empty to skip")
	)
	flag.Parse()

	if err := applyFlags(cfg, *csvPath, *symbol, *skipRows, *short, *long); err != nil {
		log.Fatal(err)
	}

	if _, err := logger.Init(cfg.Log.Level, "sma_backtest"); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if _, err := os.Stat(*csvPath); err != nil {
		if os.IsNotExist(err) {
			logger.Fatal("%s not found: download history first with `go run ./cmd/getdata -out %s`", *csvPath, *csvPath)
		}
		logger.Fatal("stat %s: %v", *csvPath, err)
	}

	hub, err := strategy.NewHub(cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod)
	if err != nil {
		logger.Fatal("strategy: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := runner.NewRecorder()
	r := runner.New(hub, cfg.Market.Symbols, nil,
		runner.NamedSink{Name: "log", Sink: runner.NewLogSink(zap.L())},
		runner.NamedSink{Name: "recorder", Sink: rec},
	)

	src := service.NewCSVSource(cfg.Market.CSVPath, cfg.Market.Symbols[0], cfg.Market.CSVSkipRows)
	if err := r.Run(ctx, src); err != nil {
		logger.Fatal("replay %s: %v", *csvPath, err)
	}

	rep := runner.BuildReport(cfg.Strategy.ShortPeriod, cfg.Strategy.LongPeriod, r.Stats(), rec)
	logger.Info("replayed %d bars (%s .. %s): %d signals, %d round trips, total return %s%%",
		rep.Bars, rep.FirstBar, rep.LastBar, len(rep.Signals), len(rep.Trades), rep.TotalReturnPct)

	if *reportPath != "" {
		if err := runner.WriteReport(*reportPath, rep); err != nil {
			logger.Fatal("%v", err)
		}
		logger.Info("report written to %s", *reportPath)
	}
}

func firstSymbol(cfg *config.Config) string {
	if len(cfg.Market.Symbols) == 0 {
		return ""
	}
	return cfg.Market.Symbols[0]
}

// applyFlags кладёт значения флагов в конфиг и проверяет итог.
func applyFlags(cfg *config.Config, csvPath, symbol string, skip, short, long int) error {
	cfg.Market.Source = "csv"
	cfg.Market.CSVPath = csvPath
	cfg.Market.CSVSkipRows = skip
	cfg.Market.Symbols = config.NormalizeSymbols([]string{symbol})
	cfg.Strategy.ShortPeriod = short
	cfg.Strategy.LongPeriod = long
	return cfg.Validate()
}
