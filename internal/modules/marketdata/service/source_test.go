package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sma_bot/internal/models"
	"sma_bot/internal/modules/config"
)

func TestOKXSourceWarmupThenStreamWithoutDuplicates(t *testing.T) {
	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			["` + dayMs(2) + `","1","1","1","2","1","1","1","1"],
			["` + dayMs(1) + `","1","1","1","1","1","1","1","1"]
		]}`))
	}))
	defer rest.Close()

	upgrader := websocket.Upgrader{}
	ws := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		// day 2 уже был в прогреве, day 3: новый
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT"},"data":[["`+dayMs(2)+`","1","1","1","2","1","1","1","1"]]}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT"},"data":[["`+dayMs(3)+`","1","1","1","3","1","1","1","1"]]}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ws.Close()

	c := newClient(rest.URL, "ws"+strings.TrimPrefix(ws.URL, "http"))
	src := NewOKXSource(c, []string{"BTC-USDT"}, "1D", 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bars, errc := src.Bars(ctx)

	var got []models.PriceBar
	for b := range bars {
		got = append(got, b)
		if len(got) == 3 {
			cancel()
		}
	}
	assert.NoError(t, <-errc)
	require.Len(t, got, 3)
	for i, b := range got {
		assert.Equal(t, i+1, b.Time.Day())
	}
}

func TestNewSourceBySetting(t *testing.T) {
	cfg := &config.Config{}
	cfg.Market.Source = "csv"
	cfg.Market.Symbols = []string{"BTC-USDT"}
	cfg.Market.CSVPath = "btc_data.csv"
	cfg.Strategy.LongPeriod = 80

	_, ok := NewSource(cfg, newClient("", "")).(*CSVSource)
	assert.True(t, ok)

	cfg.Market.Source = "okx"
	okx, ok := NewSource(cfg, newClient("", "")).(*OKXSource)
	require.True(t, ok)
	assert.Equal(t, 81, okx.warmup)
}
