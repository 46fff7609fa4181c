package strategy

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"sma_bot/internal/models"
)

// Crossover: пересечение двух SMA (short/long), только лонг, одна позиция.
//
// Знак (short - long) на прошлом баре хранится как последний НЕнулевой знак:
// бар с short == long ничего не сбрасывает, следующий уход от нуля сравнивается
// с последним известным направлением.
type Crossover struct {
	symbol      string
	shortPeriod int
	longPeriod  int

	short smaState
	long  smaState

	lastTime time.Time
	hasLast  bool

	seeded   bool // первый прогретый бар уже был
	prevSign int  // последний ненулевой знак, 0: ещё не было

	position models.Position
}

func validatePeriods(shortPeriod, longPeriod int) error {
	if shortPeriod <= 0 || longPeriod <= 0 {
		return errors.Wrapf(ErrInvalidPeriods, "periods must be positive: short=%d long=%d", shortPeriod, longPeriod)
	}
	if shortPeriod >= longPeriod {
		return errors.Wrapf(ErrInvalidPeriods, "short=%d must be less than long=%d", shortPeriod, longPeriod)
	}
	return nil
}

func NewCrossover(symbol string, shortPeriod, longPeriod int) (*Crossover, error) {
	if err := validatePeriods(shortPeriod, longPeriod); err != nil {
		return nil, err
	}
	return &Crossover{
		symbol:      symbol,
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		short:       newSMA(shortPeriod),
		long:        newSMA(longPeriod),
		position:    models.PositionFlat,
	}, nil
}

func (c *Crossover) Name() string {
	return fmt.Sprintf("SMA_Cross_%d_%d", c.shortPeriod, c.longPeriod)
}

// Observe принимает следующий закрытый бар и возвращает решение по нему.
// Бар со временем <= предыдущего отклоняется с ErrOutOfOrder, состояние не меняется.
func (c *Crossover) Observe(bar models.PriceBar) (models.Signal, error) {
	if c.hasLast && !bar.Time.After(c.lastTime) {
		return models.Signal{}, errors.Wrapf(ErrOutOfOrder, "%s: bar %s is not after %s",
			c.symbolFor(bar), bar.Time.Format(time.RFC3339), c.lastTime.Format(time.RFC3339))
	}
	c.lastTime = bar.Time
	c.hasLast = true

	c.short.Update(bar.Close)
	c.long.Update(bar.Close)

	sig := models.Signal{
		Symbol:   c.symbolFor(bar),
		Action:   models.ActionHold,
		Time:     bar.Time,
		Close:    bar.Close,
		ShortSMA: c.short.Value(),
		LongSMA:  c.long.Value(),
		Strategy: models.StrategySMACross,
	}

	if !c.long.Ready() {
		sig.Reason = fmt.Sprintf("warmup %d/%d", c.long.Seen(), c.longPeriod)
		return sig, nil
	}

	sign := c.diffSign()

	// первый прогретый бар только запоминает знак: пересечению нужен предыдущий замер
	if !c.seeded {
		c.seeded = true
		c.remember(sign)
		return sig, nil
	}

	up := c.prevSign <= 0 && sign > 0
	down := c.prevSign >= 0 && sign < 0
	c.remember(sign)

	switch {
	case c.position == models.PositionFlat && up:
		c.position = models.PositionLong
		sig.Action = models.ActionEnterLong
		sig.Reason = fmt.Sprintf("SMA%d crossed above SMA%d", c.shortPeriod, c.longPeriod)
	case c.position == models.PositionLong && down:
		c.position = models.PositionFlat
		sig.Action = models.ActionExitLong
		sig.Reason = fmt.Sprintf("SMA%d crossed below SMA%d", c.shortPeriod, c.longPeriod)
	}
	return sig, nil
}

// diffSign: знак (shortSum/S - longSum/L), посчитанный без деления:
// sign(shortSum*L - longSum*S). Равенство средних точное.
func (c *Crossover) diffSign() int {
	l := c.short.Sum().Mul(decimal.NewFromInt(int64(c.longPeriod)))
	r := c.long.Sum().Mul(decimal.NewFromInt(int64(c.shortPeriod)))
	return l.Cmp(r)
}

func (c *Crossover) remember(sign int) {
	if sign != 0 {
		c.prevSign = sign
	}
}

func (c *Crossover) symbolFor(bar models.PriceBar) string {
	if c.symbol != "" {
		return c.symbol
	}
	return bar.Symbol
}

func (c *Crossover) Ready() bool               { return c.long.Ready() }
func (c *Crossover) Position() models.Position { return c.position }

// Averages возвращает текущие SMA; ok == false до прогрева длинной.
func (c *Crossover) Averages() (short, long decimal.Decimal, ok bool) {
	return c.short.Value(), c.long.Value(), c.long.Ready()
}

func (c *Crossover) Dump() string {
	return fmt.Sprintf("SMA_S=%s SMA_L=%s bars=%d pos=%s prev=%d",
		c.short.Value().StringFixed(4), c.long.Value().StringFixed(4), c.long.Seen(), c.position, c.prevSign)
}
