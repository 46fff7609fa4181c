package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sma_bot/internal/models"
)

// Record: строка журнала сигналов.
type Record struct {
	ID        uuid.UUID
	RunID     uuid.UUID
	Signal    models.Signal
	CreatedAt time.Time
}

// Journal хранит торговые сигналы (ENTER_LONG / EXIT_LONG).
// HandleSignal: та же запись, в форме sink'а раннера.
type Journal interface {
	Save(ctx context.Context, sig models.Signal) error
	List(ctx context.Context, symbol string, limit int) ([]Record, error)
	HandleSignal(ctx context.Context, sig models.Signal) error
}

func newRecord(runID uuid.UUID, sig models.Signal) Record {
	return Record{
		ID:        uuid.New(),
		RunID:     runID,
		Signal:    sig,
		CreatedAt: time.Now().UTC(),
	}
}
