package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sma_bot/internal/modules/config"
)

func TestApplyFlagsOverridesEnv(t *testing.T) {
	t.Setenv("SHORT_PERIOD", "90")
	cfg, err := config.Read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	require.NoError(t, applyFlags(cfg, "eth.csv", "eth-usdt", 1, 10, 30))
	assert.Equal(t, "csv", cfg.Market.Source)
	assert.Equal(t, []string{"ETH-USDT"}, cfg.Market.Symbols)
	assert.Equal(t, "eth.csv", cfg.Market.CSVPath)
	assert.Equal(t, 1, cfg.Market.CSVSkipRows)
	assert.Equal(t, 10, cfg.Strategy.ShortPeriod)
	assert.Equal(t, 30, cfg.Strategy.LongPeriod)
}

func TestApplyFlagsValidatesResult(t *testing.T) {
	cfg := &config.Config{}
	assert.Error(t, applyFlags(cfg, "btc.csv", "BTC-USDT", 3, 30, 10))
	assert.Error(t, applyFlags(cfg, "btc.csv", "", 3, 10, 30))
}

func TestFirstSymbol(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "", firstSymbol(cfg))
	cfg.Market.Symbols = []string{"BTC-USDT", "ETH-USDT"}
	assert.Equal(t, "BTC-USDT", firstSymbol(cfg))
}
