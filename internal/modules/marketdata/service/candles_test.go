package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayMs(d int) string {
	return strconv.FormatInt(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).UnixMilli(), 10)
}

func TestGetCandlesReversesAndSkipsOpenCandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/market/candles", r.URL.Path)
		assert.Equal(t, "BTC-USDT", r.URL.Query().Get("instId"))
		assert.Equal(t, "1D", r.URL.Query().Get("bar"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[
			["` + dayMs(3) + `","3","3","3","3.5","1","1","1","0"],
			["` + dayMs(2) + `","2","2","2","2.5","1","1","1","1"],
			["` + dayMs(1) + `","1","1","1","1.5","1","1","1","1"]
		]}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "")
	bars, err := c.GetCandles(context.Background(), "BTC-USDT", "1d", 3)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1, bars[0].Time.Day())
	assert.Equal(t, 2, bars[1].Time.Day())
	assert.True(t, bars[1].Close.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "BTC-USDT", bars[0].Symbol)
}

func TestGetCandlesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("instId") == "BAD" {
			_, _ = w.Write([]byte(`{"code":"51001","msg":"Instrument ID does not exist","data":[]}`))
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newClient(srv.URL, "")
	_, err := c.GetCandles(context.Background(), "BAD", "1D", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "51001")

	_, err = c.GetCandles(context.Background(), "BTC-USDT", "1D", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 502")

	_, err = c.GetCandles(context.Background(), "BTC-USDT", "7x", 10)
	assert.Error(t, err)
}

func TestHistoryCandlesPagesBackToSince(t *testing.T) {
	pages := map[string]string{
		"":       `[["` + dayMs(6) + `","1","1","1","6","1","1","1","1"],["` + dayMs(5) + `","1","1","1","5","1","1","1","1"]]`,
		dayMs(5): `[["` + dayMs(4) + `","1","1","1","4","1","1","1","1"],["` + dayMs(3) + `","1","1","1","3","1","1","1","1"]]`,
		dayMs(3): `[["` + dayMs(2) + `","1","1","1","2","1","1","1","1"],["` + dayMs(1) + `","1","1","1","1","1","1","1","1"]]`,
	}
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v5/market/history-candles", r.URL.Path)
		data, ok := pages[r.URL.Query().Get("after")]
		if !ok {
			data = "[]"
		}
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":` + data + `}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, "")
	c.pageDelay = 0

	since := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars, err := c.HistoryCandles(context.Background(), "BTC-USDT", "1D", since)
	require.NoError(t, err)
	require.Len(t, bars, 5)
	for i, b := range bars {
		assert.Equal(t, i+2, b.Time.Day())
	}
	assert.Equal(t, 3, calls)
}

func TestParseRow(t *testing.T) {
	_, ok := parseRow("X", []string{"1"})
	assert.False(t, ok)

	_, ok = parseRow("X", []string{"abc", "1", "1", "1", "1"})
	assert.False(t, ok)

	_, ok = parseRow("X", []string{dayMs(1), "1", "1", "1", "0"})
	assert.False(t, ok, "non-positive close")

	b, ok := parseRow("X", []string{dayMs(1), "1", "2", "0.5", "1.25"})
	require.True(t, ok)
	assert.True(t, b.Close.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, b.Volume.IsZero())
}

func TestOkxBar(t *testing.T) {
	for in, want := range map[string]string{"1d": "1D", "1D": "1D", "4h": "4H", "15m": "15m", "1w": "1W"} {
		got, err := okxBar(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestTimeframeDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, TimeframeDuration("1D"))
	assert.Equal(t, 24*time.Hour, TimeframeDuration("1Dutc"))
	assert.Equal(t, 4*time.Hour, TimeframeDuration("4h"))
	assert.Equal(t, 12*time.Hour, TimeframeDuration("12H"))
	assert.Equal(t, 15*time.Minute, TimeframeDuration("15m"))
	assert.Zero(t, TimeframeDuration("7x"))
}
