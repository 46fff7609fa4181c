package strategy

import "github.com/pkg/errors"

var (
	// ErrOutOfOrder: бар не позже последнего принятого.
	ErrOutOfOrder = errors.New("out-of-order input")
	// ErrInvalidPeriods: периоды не положительные или short >= long.
	ErrInvalidPeriods = errors.New("invalid sma periods")
)
