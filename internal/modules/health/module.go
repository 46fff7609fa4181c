package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"sma_bot/internal/modules/config"
	"sma_bot/internal/modules/health/service"
	marketdata "sma_bot/internal/modules/marketdata/service"
)

// staleBars: столько таймфреймов без нового бара, и стрим считается протухшим
const staleBars = 3

type Config struct {
	Addr string // например ":8080"
	// 0: не проверять (csv отдаёт исторические бары)
	StaleAfter time.Duration
}

func NewConfig(cfg *config.Config) Config {
	c := Config{Addr: cfg.Service.HealthAddr}
	if cfg.Market.Source == "okx" {
		c.StaleAfter = staleBars * marketdata.TimeframeDuration(cfg.Market.Timeframe)
	}
	return c
}

// stale: последний бар старше StaleAfter.
func stale(state *service.State, after time.Duration, now time.Time) bool {
	if after <= 0 {
		return false
	}
	last := state.LastBar()
	return !last.IsZero() && now.Sub(last) > after
}

func NewMux(state *service.State, cfg Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: все символы прогреты
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// полезный JSON для отладки
		resp := map[string]any{
			"ready":     state.Ready(),
			"stale":     stale(state, cfg.StaleAfter, time.Now()),
			"bars":      state.Bars(),
			"uptimeSec": int64(state.Uptime().Seconds()),
			"lastBarUnix": func() int64 {
				t := state.LastBar()
				if t.IsZero() {
					return 0
				}
				return t.Unix()
			}(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(resp)
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	if cfg.Addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
