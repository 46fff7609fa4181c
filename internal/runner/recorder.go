package runner

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sma_bot/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Recorder собирает сигналы и закрытые сделки (ENTER_LONG -> EXIT_LONG) для отчёта.
type Recorder struct {
	mu      sync.Mutex
	signals []models.Signal
	trades  []models.Trade
	open    map[string]models.Signal
}

func NewRecorder() *Recorder {
	return &Recorder{open: make(map[string]models.Signal)}
}

func (r *Recorder) HandleSignal(_ context.Context, sig models.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.signals = append(r.signals, sig)
	switch sig.Action {
	case models.ActionEnterLong:
		r.open[sig.Symbol] = sig
	case models.ActionExitLong:
		entry, ok := r.open[sig.Symbol]
		if !ok {
			return nil
		}
		delete(r.open, sig.Symbol)
		r.trades = append(r.trades, newTrade(entry, sig))
	}
	return nil
}

func newTrade(entry, exit models.Signal) models.Trade {
	ret := decimal.Zero
	if !entry.Close.IsZero() {
		ret = exit.Close.Sub(entry.Close).Div(entry.Close).Mul(hundred).Round(4)
	}
	return models.Trade{
		Symbol:     entry.Symbol,
		EntryTime:  entry.Time,
		EntryPrice: entry.Close,
		ExitTime:   exit.Time,
		ExitPrice:  exit.Close,
		ReturnPct:  ret,
	}
}

func (r *Recorder) Signals() []models.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Signal(nil), r.signals...)
}

func (r *Recorder) Trades() []models.Trade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Trade(nil), r.trades...)
}

// Open: позиции, оставшиеся открытыми на конец данных.
func (r *Recorder) Open() []models.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Signal, 0, len(r.open))
	for _, sig := range r.open {
		out = append(out, sig)
	}
	sortSignals(out)
	return out
}

// LogSink пишет сделки в лог в духе "BUY CREATE, 42000.00".
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) HandleSignal(_ context.Context, sig models.Signal) error {
	verb := "BUY CREATE"
	if sig.Action == models.ActionExitLong {
		verb = "SELL CREATE"
	}
	s.log.Info(verb+", "+sig.Close.StringFixed(2),
		zap.String("symbol", sig.Symbol),
		zap.String("date", sig.Time.UTC().Format("2006-01-02")),
	)
	return nil
}
