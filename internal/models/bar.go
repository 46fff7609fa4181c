package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar: закрытая свеча. Для стратегии важны только Time и Close.
type PriceBar struct {
	Symbol string
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}
