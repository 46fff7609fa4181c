package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"sma_bot/internal/models"
)

// Memory: журнал в памяти, когда Postgres не настроен.
type Memory struct {
	runID uuid.UUID

	mu   sync.RWMutex
	data map[string][]Record // symbol -> записи по возрастанию времени бара
	keys map[string]struct{}
}

func NewMemory(runID uuid.UUID) *Memory {
	return &Memory{
		runID: runID,
		data:  make(map[string][]Record),
		keys:  make(map[string]struct{}),
	}
}

func (m *Memory) Save(ctx context.Context, sig models.Signal) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Memory.Save: %w", err)
		}
	}()
	if sig.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// как ON CONFLICT DO NOTHING в pg
	key := dedupKey(m.runID, sig)
	if _, ok := m.keys[key]; ok {
		return nil
	}
	m.keys[key] = struct{}{}

	recs := append(m.data[sig.Symbol], newRecord(m.runID, sig))
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Signal.Time.Before(recs[j].Signal.Time) })
	m.data[sig.Symbol] = recs
	return nil
}

// List: последние limit записей по символу, новые первыми.
func (m *Memory) List(ctx context.Context, symbol string, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.data[symbol]
	if limit <= 0 || limit > len(recs) {
		limit = len(recs)
	}
	out := make([]Record, 0, limit)
	for i := len(recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}

func (m *Memory) HandleSignal(ctx context.Context, sig models.Signal) error {
	return m.Save(ctx, sig)
}

func dedupKey(runID uuid.UUID, sig models.Signal) string {
	return runID.String() + "|" + sig.Symbol + "|" + sig.Time.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

var _ Journal = (*Memory)(nil)
