package runner

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"sma_bot/internal/metrics"
	"sma_bot/internal/models"
	"sma_bot/internal/modules/marketdata/service"
	"sma_bot/internal/strategy"
	"sma_bot/pkg/tracing"
)

// Sink получает торговые сигналы (журнал, шина, нотифайер).
type Sink interface {
	HandleSignal(ctx context.Context, sig models.Signal) error
}

// NamedSink: имя идёт в лейбл sma_bot_sink_errors_total.
type NamedSink struct {
	Name string
	Sink Sink
}

// Status: то, что раннер сообщает health-ручкам.
type Status interface {
	TouchBar(t time.Time)
	SetReady(v bool)
}

type Stats struct {
	Bars     int
	Rejected int
	Signals  int
	FirstBar time.Time
	LastBar  time.Time
}

// Runner единственный потребитель баров (hub -> метрики -> sinks).
type Runner struct {
	hub     *strategy.Hub
	symbols []string
	sinks   []NamedSink
	status  Status
	log     *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// New: после прогрева всех symbols сервис считается готовым.
func New(hub *strategy.Hub, symbols []string, status Status, sinks ...NamedSink) *Runner {
	return &Runner{
		hub:     hub,
		symbols: symbols,
		sinks:   sinks,
		status:  status,
		log:     zap.L().Named("runner"),
	}
}

// Run читает источник до закрытия канала или отмены ctx.
// Возвращает ошибку источника, если она была.
func (r *Runner) Run(ctx context.Context, src service.Source) error {
	bars, errc := src.Bars(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bar, ok := <-bars:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err, ok := <-errc; ok && err != nil {
					return err
				}
				return nil
			}
			r.Step(ctx, bar)
		}
	}
}

// Step прогоняет один бар. Ошибки бара логируются и не останавливают поток.
func (r *Runner) Step(ctx context.Context, bar models.PriceBar) (models.Signal, error) {
	sig, becameReady, err := r.hub.OnBar(bar)
	if err != nil {
		if errors.Is(err, strategy.ErrOutOfOrder) {
			metrics.RejectedBarsTotal.WithLabelValues(bar.Symbol).Inc()
			r.log.Warn("bar skipped", zap.String("symbol", bar.Symbol), zap.Time("time", bar.Time), zap.Error(err))
		} else {
			r.log.Error("bar failed", zap.String("symbol", bar.Symbol), zap.Error(err))
		}
		r.mu.Lock()
		r.stats.Rejected++
		r.mu.Unlock()
		return models.Signal{}, err
	}

	metrics.BarsTotal.WithLabelValues(sig.Symbol).Inc()
	r.touch(bar.Time)

	if becameReady {
		r.log.Info("warm-up done", zap.String("symbol", sig.Symbol), zap.Time("time", bar.Time))
		// гейдж появляется сразу, а не с первым ENTER
		metrics.SetPosition(sig.Symbol, r.hub.Position(sig.Symbol))
		if r.status != nil && r.allReady() {
			r.status.SetReady(true)
		}
	}

	if !sig.Action.IsTrade() {
		r.log.Debug("hold",
			zap.String("symbol", sig.Symbol),
			zap.String("close", sig.Close.String()),
		)
		return sig, nil
	}

	metrics.SignalsTotal.WithLabelValues(sig.Symbol, string(sig.Action)).Inc()
	metrics.SetPosition(sig.Symbol, r.hub.Position(sig.Symbol))
	r.log.Info("signal",
		zap.String("symbol", sig.Symbol),
		zap.String("action", string(sig.Action)),
		zap.String("close", sig.Close.String()),
		zap.String("short_sma", sig.ShortSMA.StringFixed(4)),
		zap.String("long_sma", sig.LongSMA.StringFixed(4)),
	)
	r.mu.Lock()
	r.stats.Signals++
	r.mu.Unlock()

	r.dispatch(ctx, sig)
	return sig, nil
}

func (r *Runner) dispatch(ctx context.Context, sig models.Signal) {
	span, ctx := tracing.StartSpan(ctx, "runner.dispatch")
	defer span.Finish()
	span.SetTag("symbol", sig.Symbol)
	span.SetTag("action", string(sig.Action))

	for _, s := range r.sinks {
		if err := s.Sink.HandleSignal(ctx, sig); err != nil {
			metrics.SinkErrorsTotal.WithLabelValues(s.Name).Inc()
			span.SetTag("error", true)
			r.log.Error("sink failed",
				zap.String("sink", s.Name),
				zap.String("symbol", sig.Symbol),
				zap.String("action", string(sig.Action)),
				zap.Error(err),
			)
		}
	}
}

func (r *Runner) touch(t time.Time) {
	r.mu.Lock()
	if r.stats.Bars == 0 || t.Before(r.stats.FirstBar) {
		r.stats.FirstBar = t
	}
	if t.After(r.stats.LastBar) {
		r.stats.LastBar = t
	}
	r.stats.Bars++
	r.mu.Unlock()

	if r.status != nil {
		r.status.TouchBar(t)
	}
}

func (r *Runner) allReady() bool {
	if len(r.symbols) == 0 {
		return true
	}
	for _, s := range r.symbols {
		if !r.hub.IsReady(s) {
			return false
		}
	}
	return true
}

func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
