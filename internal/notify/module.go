package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	"sma_bot/internal/modules/config"
	"sma_bot/internal/strategy"
	"sma_bot/pkg/logger"
)

// NewNotifier: Telegram, если заданы token и chat_id, иначе stdout.
func NewNotifier(lc fx.Lifecycle, cfg *config.Config, hub *strategy.Hub) (Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("telegram is not configured, notifications go to log")
		return NewStdout(), nil
	}

	tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		return nil, err
	}
	tg.SetStatus(func() string { return StatusText(hub) })

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return tg.Start(ctx)
		},
		OnStop: func(context.Context) error {
			cancel()
			tg.Stop()
			return nil
		},
	})
	return tg, nil
}

// StatusText: сводка по всем символам хаба.
func StatusText(hub *strategy.Hub) string {
	symbols := hub.Symbols()
	if len(symbols) == 0 {
		return "📭 Баров ещё не было"
	}
	var b strings.Builder
	b.WriteString("📊 Состояние:\n")
	for _, s := range symbols {
		fmt.Fprintf(&b, "- %s %s %s\n", s, hub.Position(s), hub.Dump(s))
	}
	return b.String()
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			NewNotifier,
			NewSignalSink,
		),
	)
}
