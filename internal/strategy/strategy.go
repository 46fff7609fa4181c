package strategy

import (
	"sma_bot/internal/models"
)

// Engine: движок одного символа, Hub дергает его на каждый закрытый бар.
type Engine interface {
	Observe(bar models.PriceBar) (models.Signal, error)
	Position() models.Position
	Ready() bool
	Dump() string
	Name() string
}

// Factory создаёт движок для нового символа.
type Factory func(symbol string) (Engine, error)

func CrossoverFactory(shortPeriod, longPeriod int) Factory {
	return func(symbol string) (Engine, error) {
		eng, err := NewCrossover(symbol, shortPeriod, longPeriod)
		if err != nil {
			return nil, err
		}
		return eng, nil
	}
}

var _ Engine = (*Crossover)(nil)
