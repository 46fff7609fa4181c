package strategy

import "github.com/shopspring/decimal"

// smaState: простая скользящая средняя на кольцевом буфере.
// Сумма хранится в decimal, чтобы вытеснение старой цены не копило ошибку.
type smaState struct {
	period int
	window []decimal.Decimal
	head   int
	sum    decimal.Decimal
	seen   int
}

func newSMA(period int) smaState {
	if period <= 1 {
		period = 1
	}
	return smaState{
		period: period,
		window: make([]decimal.Decimal, period),
	}
}

func (s *smaState) Update(price decimal.Decimal) {
	if s.seen >= s.period {
		s.sum = s.sum.Sub(s.window[s.head])
	}
	s.window[s.head] = price
	s.sum = s.sum.Add(price)
	s.head = (s.head + 1) % s.period
	s.seen++
}

func (s *smaState) Ready() bool          { return s.seen >= s.period }
func (s *smaState) Sum() decimal.Decimal { return s.sum }
func (s *smaState) Seen() int            { return s.seen }

// Value: среднее по окну; до прогрева делит на число увиденных баров.
func (s *smaState) Value() decimal.Decimal {
	n := s.seen
	if n == 0 {
		return decimal.Zero
	}
	if n > s.period {
		n = s.period
	}
	return s.sum.Div(decimal.NewFromInt(int64(n)))
}
