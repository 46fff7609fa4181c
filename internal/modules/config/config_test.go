package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values_test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Strategy.ShortPeriod)
	assert.Equal(t, 80, cfg.Strategy.LongPeriod)
	assert.Equal(t, "okx", cfg.Market.Source)
	assert.Equal(t, []string{"BTC-USDT"}, cfg.Market.Symbols)
	assert.Equal(t, "1D", cfg.Market.Timeframe)
	assert.Equal(t, 3, cfg.Market.CSVSkipRows)
	assert.Equal(t, ":8080", cfg.Service.HealthAddr)
	assert.Equal(t, "signals", cfg.Redis.Channel)
	assert.Equal(t, "signals:stream", cfg.Redis.Stream)
	assert.Equal(t, 6831, cfg.Tracing.Port)
	assert.Equal(t, 81, cfg.WarmupBars())
}

func TestLoadReadsFile(t *testing.T) {
	path := writeConfig(t, `
strategy:
  short_period: 5
  long_period: 20
market:
  source: okx
  symbols: [" eth-usdt ", "BTC-USDT", "ETH-USDT"]
  csv_path: data/eth.csv
  csv_skip_rows: 1
  warmup_bars: 50
redis:
  addr: localhost:6379
telegram:
  chat_id: 42
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Strategy.ShortPeriod)
	assert.Equal(t, 20, cfg.Strategy.LongPeriod)
	assert.Equal(t, "okx", cfg.Market.Source)
	assert.Equal(t, []string{"ETH-USDT", "BTC-USDT"}, cfg.Market.Symbols)
	assert.Equal(t, "data/eth.csv", cfg.Market.CSVPath)
	assert.Equal(t, 1, cfg.Market.CSVSkipRows)
	assert.Equal(t, 50, cfg.WarmupBars())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
db_dsn: postgres://file
strategy:
  short_period: 5
  long_period: 20
`)
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("SHORT_PERIOD", "7")
	t.Setenv("TELEGRAM_CHAT_ID", "1001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.DB)
	assert.Equal(t, 7, cfg.Strategy.ShortPeriod)
	assert.Equal(t, 20, cfg.Strategy.LongPeriod)
	assert.Equal(t, int64(1001), cfg.Telegram.ChatID)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"short above long": "strategy:\n  short_period: 80\n  long_period: 25\n",
		"zero period":      "strategy:\n  short_period: 0\n  long_period: 25\n",
		"unknown source":   "market:\n  source: ftp\n",
		"blank symbols":    "market:\n  symbols: [\"  \"]\n",
		"negative skip":    "market:\n  csv_skip_rows: -1\n",
		"csv many symbols": "market:\n  source: csv\n  symbols: [BTC-USDT, ETH-USDT]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "strategy: [unclosed"))
	assert.Error(t, err)
}

func TestLoadAcceptsSingleCSVSymbol(t *testing.T) {
	cfg, err := Load(writeConfig(t, "market:\n  source: csv\n  symbols: [eth-usdt]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH-USDT"}, cfg.Market.Symbols)
}

func TestReadSkipsValidation(t *testing.T) {
	path := writeConfig(t, "strategy:\n  short_period: 5\n  long_period: 20\n")
	t.Setenv("SHORT_PERIOD", "90")

	_, err := Load(path)
	require.Error(t, err)

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Strategy.ShortPeriod)

	// флаги CLI перекрывают env, проверяется уже итог
	cfg.Strategy.ShortPeriod = 10
	assert.NoError(t, cfg.Validate())
}
