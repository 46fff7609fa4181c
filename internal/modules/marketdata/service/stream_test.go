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
	"go.uber.org/zap"

	"sma_bot/internal/models"
)

func TestDecodeFrame(t *testing.T) {
	msg := []byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT"},"data":[
		["` + dayMs(1) + `","1","1","1","100","1","1","1","0"],
		["` + dayMs(1) + `","1","1","1","101","1","1","1","1"]
	]}`)
	bars := decodeFrame(msg, "candle1D")
	require.Len(t, bars, 1)
	assert.Equal(t, "BTC-USDT", bars[0].Symbol)
	assert.Equal(t, "101", bars[0].Close.String())

	assert.Empty(t, decodeFrame([]byte("pong"), "candle1D"))
	assert.Empty(t, decodeFrame([]byte(`{"event":"subscribe","arg":{"channel":"candle1D"}}`), "candle1D"))
	assert.Empty(t, decodeFrame(msg, "candle1H"))
	assert.Empty(t, decodeFrame([]byte(`{not json`), "candle1D"))
}

func TestStreamBarsFromServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan []byte, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, sub, err := conn.ReadMessage()
		if err != nil {
			return
		}
		subscribed <- sub

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"subscribe","arg":{"channel":"candle1D","instId":"BTC-USDT"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT"},"data":[["`+dayMs(1)+`","1","1","1","100","1","1","1","0"]]}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"arg":{"channel":"candle1D","instId":"BTC-USDT"},"data":[["`+dayMs(1)+`","1","1","1","100","1","1","1","1"]]}`))

		// держим соединение, пока клиент не уйдёт
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := newClient("", "ws"+strings.TrimPrefix(srv.URL, "http"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := c.StreamBars(ctx, []string{"BTC-USDT"}, "1d")
	require.NoError(t, err)

	select {
	case b := <-ch:
		assert.Equal(t, "BTC-USDT", b.Symbol)
		assert.Equal(t, "100", b.Close.String())
	case <-ctx.Done():
		t.Fatal("no bar received")
	}
	assert.Contains(t, string(<-subscribed), `"candle1D"`)

	cancel()
	for range ch {
	}
}

func TestReadLoopStopsOnContext(t *testing.T) {
	c := newClient("", "")
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan models.PriceBar)

	frame := []byte(`{"arg":{"channel":"candle1D","instId":"X"},"data":[["` + dayMs(1) + `","1","1","1","5","1","1","1","1"]]}`)
	read := func() (int, []byte, error) { return websocket.TextMessage, frame, nil }

	done := make(chan bool, 1)
	go func() { done <- c.readLoop(ctx, read, "candle1D", out, zap.NewNop()) }()

	<-out
	cancel()
	assert.True(t, <-done)
}
