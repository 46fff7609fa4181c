package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StrategyType string

const (
	StrategySMACross StrategyType = "sma_cross"
)

// Action: решение стратегии на одном баре.
type Action string

const (
	ActionHold      Action = "HOLD"
	ActionEnterLong Action = "ENTER_LONG"
	ActionExitLong  Action = "EXIT_LONG"
)

// IsTrade is true for ENTER_LONG and EXIT_LONG.
func (a Action) IsTrade() bool {
	return a == ActionEnterLong || a == ActionExitLong
}

type Signal struct {
	Symbol   string          `json:"symbol"`
	Action   Action          `json:"action"`
	Time     time.Time       `json:"time"`
	Close    decimal.Decimal `json:"close"`
	ShortSMA decimal.Decimal `json:"short_sma"`
	LongSMA  decimal.Decimal `json:"long_sma"`
	Strategy StrategyType    `json:"strategy"`
	Reason   string          `json:"reason,omitempty"`
}

// Run: один запуск процесса; run_id пишется в журнал и на шину.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
}

func NewRun() *Run {
	return &Run{ID: uuid.New(), StartedAt: time.Now().UTC()}
}
