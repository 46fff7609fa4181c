package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"sma_bot/internal/models"
)

var (
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sma_bot_bars_total", Help: "Bars fed into the crossover engine"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sma_bot_signals_total", Help: "Trade signals emitted"},
		[]string{"symbol", "action"},
	)
	SinkErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sma_bot_sink_errors_total", Help: "Failed signal deliveries per sink"},
		[]string{"sink"},
	)
	RejectedBarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sma_bot_rejected_bars_total", Help: "Bars rejected as out of order"},
		[]string{"symbol"},
	)
	Position = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "sma_bot_position", Help: "1 when long, 0 when flat"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(BarsTotal, SignalsTotal, SinkErrorsTotal, RejectedBarsTotal, Position)
}

// SetPosition пишет позицию символа в гейдж.
func SetPosition(symbol string, p models.Position) {
	v := 0.0
	if p == models.PositionLong {
		v = 1
	}
	Position.WithLabelValues(symbol).Set(v)
}
