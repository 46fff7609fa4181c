package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sma_bot/internal/models"
)

// TimeframeDuration: длительность бара, 0 для неизвестного таймфрейма.
func TimeframeDuration(tf string) time.Duration {
	switch tf {
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1H", "1h":
		return time.Hour
	case "2H", "2h":
		return 2 * time.Hour
	case "4H", "4h":
		return 4 * time.Hour
	case "6H", "6h":
		return 6 * time.Hour
	case "12H", "12h":
		return 12 * time.Hour
	case "1D", "1d", "1Dutc", "1dutc":
		return 24 * time.Hour
	case "1W", "1w", "1Wutc", "1wutc":
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

func okxBar(tf string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(tf)) {
	case "1m", "3m", "5m", "15m", "30m":
		return strings.ToLower(strings.TrimSpace(tf)), nil

	case "60m", "1h":
		return "1H", nil
	case "2h":
		return "2H", nil
	case "4h":
		return "4H", nil
	case "6h":
		return "6H", nil
	case "12h":
		return "12H", nil

	case "1d":
		return "1D", nil
	case "1w":
		return "1W", nil

	case "1dutc":
		return "1Dutc", nil
	case "1wutc":
		return "1Wutc", nil
	}
	return "", fmt.Errorf("unsupported timeframe for OKX bar: %q", tf)
}

// parseRow: [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm]
// ok == false для битой строки или незакрытой свечи.
func parseRow(instID string, row []string) (models.PriceBar, bool) {
	if len(row) < 5 {
		return models.PriceBar{}, false
	}
	// confirm всегда в последнем элементе, если он есть
	if len(row) >= 9 && row[len(row)-1] != "1" {
		return models.PriceBar{}, false
	}

	tsMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.PriceBar{}, false
	}
	open, err1 := decimal.NewFromString(row[1])
	high, err2 := decimal.NewFromString(row[2])
	low, err3 := decimal.NewFromString(row[3])
	closep, err4 := decimal.NewFromString(row[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.PriceBar{}, false
	}
	if !closep.IsPositive() {
		return models.PriceBar{}, false
	}

	var vol decimal.Decimal
	if len(row) >= 6 {
		vol, _ = decimal.NewFromString(row[5])
	}

	return models.PriceBar{
		Symbol: instID,
		Time:   time.UnixMilli(tsMs).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closep,
		Volume: vol,
	}, true
}
