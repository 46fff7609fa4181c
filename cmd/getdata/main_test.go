package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "btc_data.csv", outputPath("btc_data.csv", "BTC-USDT", false))
	assert.Equal(t, "data/btc_data_ETH-USDT.csv", outputPath("data/btc_data.csv", "ETH-USDT", true))
	assert.Equal(t, "prices_SOL-USDT", outputPath("prices", "SOL-USDT", true))
}

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT"}, splitSymbols(" btc-usdt, ,ETH-USDT "))
	assert.Empty(t, splitSymbols(""))
}
