package strategy

import (
	"sort"
	"sync"

	"sma_bot/internal/models"
)

// Hub держит по движку на символ и сериализует вызовы Observe.
type Hub struct {
	mu sync.Mutex

	factory Factory
	engines map[string]Engine
}

func NewHub(shortPeriod, longPeriod int) (*Hub, error) {
	if err := validatePeriods(shortPeriod, longPeriod); err != nil {
		return nil, err
	}
	return NewHubWithFactory(CrossoverFactory(shortPeriod, longPeriod)), nil
}

// NewHubWithFactory: движок на новый символ создаёт factory.
func NewHubWithFactory(factory Factory) *Hub {
	return &Hub{
		factory: factory,
		engines: make(map[string]Engine),
	}
}

// OnBar прогоняет бар через движок его символа.
// becameReady == true ровно на том баре, где длинная SMA прогрелась.
func (h *Hub) OnBar(bar models.PriceBar) (sig models.Signal, becameReady bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	eng, err := h.engineLocked(bar.Symbol)
	if err != nil {
		return models.Signal{}, false, err
	}
	wasReady := eng.Ready()
	sig, err = eng.Observe(bar)
	if err != nil {
		return models.Signal{}, false, err
	}
	return sig, !wasReady && eng.Ready(), nil
}

func (h *Hub) engineLocked(symbol string) (Engine, error) {
	if eng, ok := h.engines[symbol]; ok {
		return eng, nil
	}
	eng, err := h.factory(symbol)
	if err != nil {
		return nil, err
	}
	h.engines[symbol] = eng
	return eng, nil
}

func (h *Hub) IsReady(symbol string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	eng, ok := h.engines[symbol]
	return ok && eng.Ready()
}

func (h *Hub) Position(symbol string) models.Position {
	h.mu.Lock()
	defer h.mu.Unlock()
	if eng, ok := h.engines[symbol]; ok {
		return eng.Position()
	}
	return models.PositionFlat
}

func (h *Hub) Dump(symbol string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if eng, ok := h.engines[symbol]; ok {
		return eng.Name() + " " + eng.Dump()
	}
	return "no data"
}

func (h *Hub) Symbols() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.engines))
	for s := range h.engines {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
