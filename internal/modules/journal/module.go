package journal

import (
	"context"

	"go.uber.org/fx"

	"sma_bot/internal/models"
	"sma_bot/internal/modules/journal/service"
	"sma_bot/pkg/db"
)

// NewJournal: Postgres, если пул поднят, иначе память.
func NewJournal(ctx context.Context, tx *db.PgTxManager, run *models.Run) (service.Journal, error) {
	if tx == nil {
		return service.NewMemory(run.ID), nil
	}
	j := service.NewPgJournal(tx, run.ID)
	if err := j.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			NewJournal,
		),
	)
}
