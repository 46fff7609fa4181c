package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sma_bot/internal/modules/config"
	"sma_bot/internal/modules/marketdata/service"
	"sma_bot/pkg/logger"
)

const parallelDownloads = 4

func main() {
	// периоды SMA тут не нужны, поэтому без Validate
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}

	var (
		start     = flag.String("start", "2023-01-01", "first day to download (YYYY-MM-DD)")
		out       = flag.String("out", cfg.Market.CSVPath, "output CSV; with several symbols the symbol is appended to the name")
		symbols   = flag.String("symbols", strings.Join(cfg.Market.Symbols, ","), "comma separated OKX instruments")
		timeframe = flag.String("bar", "1Dutc", "OKX bar size")
	)
	flag.Parse()

	if _, err := logger.Init(cfg.Log.Level, "sma_getdata"); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	since, err := time.Parse("2006-01-02", *start)
	if err != nil {
		logger.Fatal("bad -start %q: %v", *start, err)
	}

	list := splitSymbols(*symbols)
	if len(list) == 0 {
		logger.Fatal("no symbols to download")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := service.NewClient(cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelDownloads)
	for _, sym := range list {
		path := outputPath(*out, sym, len(list) > 1)
		g.Go(func() error {
			return download(ctx, client, sym, *timeframe, since, path)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("%v", err)
	}
}

func download(ctx context.Context, client *service.Client, symbol, timeframe string, since time.Time, path string) error {
	bars, err := client.HistoryCandles(ctx, symbol, timeframe, since)
	if err != nil {
		return fmt.Errorf("download %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		logger.Info("%s: no new data since %s", symbol, since.Format("2006-01-02"))
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := service.WriteCSV(f, symbol, bars); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("%s: %d bars (%s .. %s) saved to %s", symbol, len(bars),
		bars[0].Time.Format("2006-01-02"), bars[len(bars)-1].Time.Format("2006-01-02"), path)
	return f.Close()
}

// outputPath: btc_data.csv + ETH-USDT -> btc_data_ETH-USDT.csv
func outputPath(out, symbol string, multi bool) string {
	if !multi {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "_" + symbol + ext
}

func splitSymbols(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
