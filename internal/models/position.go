package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position string

const (
	PositionFlat Position = "FLAT"
	PositionLong Position = "LONG"
)

// Trade: закрытый раунд ENTER_LONG -> EXIT_LONG.
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	EntryPrice decimal.Decimal
	ExitTime   time.Time
	ExitPrice  decimal.Decimal
	ReturnPct  decimal.Decimal
}
