package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sma_bot/internal/models"
	"sma_bot/internal/modules/config"
)

// Source: упорядоченный поток баров для раннера.
// Канал ошибок закрывается после канала баров.
type Source interface {
	Bars(ctx context.Context) (<-chan models.PriceBar, <-chan error)
}

// OKXSource: REST-прогрев на warmup свечей по каждому символу, затем WS стрим.
// Бары не новее последнего отданного по символу отбрасываются (стык прогрева и стрима).
type OKXSource struct {
	client    *Client
	symbols   []string
	timeframe string
	warmup    int
}

func NewOKXSource(client *Client, symbols []string, timeframe string, warmup int) *OKXSource {
	return &OKXSource{client: client, symbols: symbols, timeframe: timeframe, warmup: warmup}
}

func (s *OKXSource) Bars(ctx context.Context) (<-chan models.PriceBar, <-chan error) {
	out := make(chan models.PriceBar, 1024)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(out)

		last := make(map[string]time.Time, len(s.symbols))
		emit := func(b models.PriceBar) bool {
			if t, ok := last[b.Symbol]; ok && !b.Time.After(t) {
				return true
			}
			last[b.Symbol] = b.Time
			select {
			case out <- b:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if s.warmup > 0 {
			for _, sym := range s.symbols {
				bars, err := s.client.GetCandles(ctx, sym, s.timeframe, s.warmup)
				if err != nil {
					errc <- fmt.Errorf("warmup %s: %w", sym, err)
					return
				}
				zap.L().Info("warmup loaded", zap.String("symbol", sym), zap.Int("bars", len(bars)))
				for _, b := range bars {
					if !emit(b) {
						return
					}
				}
			}
		}

		stream, err := s.client.StreamBars(ctx, s.symbols, s.timeframe)
		if err != nil {
			errc <- err
			return
		}
		for b := range stream {
			if !emit(b) {
				return
			}
		}
	}()
	return out, errc
}

// NewSource выбирает источник по market.source.
func NewSource(cfg *config.Config, client *Client) Source {
	switch cfg.Market.Source {
	case "csv":
		return NewCSVSource(cfg.Market.CSVPath, cfg.Market.Symbols[0], cfg.Market.CSVSkipRows)
	default:
		return NewOKXSource(client, cfg.Market.Symbols, cfg.Market.Timeframe, cfg.WarmupBars())
	}
}

var (
	_ Source = (*CSVSource)(nil)
	_ Source = (*OKXSource)(nil)
)
