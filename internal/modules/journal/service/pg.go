package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sma_bot/internal/models"
	"sma_bot/pkg/db"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS signals (
    id         UUID PRIMARY KEY,
    run_id     UUID NOT NULL,
    symbol     TEXT NOT NULL,
    action     TEXT NOT NULL,
    bar_time   TIMESTAMPTZ NOT NULL,
    close      NUMERIC NOT NULL,
    short_sma  NUMERIC,
    long_sma   NUMERIC,
    strategy   TEXT,
    reason     TEXT,
    payload    JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (run_id, symbol, bar_time)
)`

const createIndexSQL = `CREATE INDEX IF NOT EXISTS signals_symbol_bar_time_idx ON signals (symbol, bar_time DESC)`

const insertSignalSQL = `
INSERT INTO signals (id, run_id, symbol, action, bar_time, close, short_sma, long_sma, strategy, reason, payload, created_at)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9, $10, $11::jsonb, $12)
ON CONFLICT (run_id, symbol, bar_time) DO NOTHING`

const listSignalsSQL = `
SELECT id::text, run_id::text, symbol, action, bar_time, close::text, short_sma::text, long_sma::text,
       COALESCE(strategy, ''), COALESCE(reason, ''), created_at
FROM signals
WHERE symbol = $1
ORDER BY bar_time DESC
LIMIT $2`

// PgJournal implement db store
type PgJournal struct {
	db    db.TxManager
	runID uuid.UUID
}

func NewPgJournal(db db.TxManager, runID uuid.UUID) *PgJournal {
	return &PgJournal{db: db, runID: runID}
}

func (p *PgJournal) EnsureSchema(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgJournal.EnsureSchema: %w", err)
		}
	}()
	for _, q := range []string{createTableSQL, createIndexSQL} {
		if _, err = p.db.Conn().Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (p *PgJournal) Save(ctx context.Context, sig models.Signal) error {
	inserted, err := p.insert(ctx, sig)
	if err != nil {
		return err
	}
	if !inserted {
		zap.L().Debug("signal already journaled",
			zap.String("symbol", sig.Symbol),
			zap.Time("bar_time", sig.Time),
		)
	}
	return nil
}

// insert: false, если строка (run_id, symbol, bar_time) уже была.
func (p *PgJournal) insert(ctx context.Context, sig models.Signal) (inserted bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgJournal.Save: %w", err)
		}
	}()

	args, err := insertArgs(newRecord(p.runID, sig))
	if err != nil {
		return false, err
	}
	err = p.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctxTx, insertSignalSQL, args...)
		if err != nil {
			return err
		}
		inserted = tag.RowsAffected() > 0
		return nil
	})
	return inserted, err
}

func (p *PgJournal) HandleSignal(ctx context.Context, sig models.Signal) error {
	return p.Save(ctx, sig)
}

func (p *PgJournal) List(ctx context.Context, symbol string, limit int) (out []Record, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgJournal.List: %w", err)
		}
	}()
	if limit <= 0 {
		limit = 100
	}

	rows, err := p.db.Conn().Query(ctx, listSignalsSQL, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, runID, action, closeRaw string
			shortRaw, longRaw           *string
			rec                         Record
			barTime                     time.Time
			strategy                    string
		)
		if err := rows.Scan(&id, &runID, &rec.Signal.Symbol, &action, &barTime, &closeRaw,
			&shortRaw, &longRaw, &strategy, &rec.Signal.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if rec.RunID, err = uuid.Parse(runID); err != nil {
			return nil, err
		}
		if rec.Signal.Close, err = decimal.NewFromString(closeRaw); err != nil {
			return nil, err
		}
		rec.Signal.ShortSMA = decimalOrZero(shortRaw)
		rec.Signal.LongSMA = decimalOrZero(longRaw)
		rec.Signal.Action = models.Action(action)
		rec.Signal.Strategy = models.StrategyType(strategy)
		rec.Signal.Time = barTime.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func insertArgs(rec Record) ([]any, error) {
	payload, err := sonic.Marshal(rec.Signal)
	if err != nil {
		return nil, err
	}
	s := rec.Signal
	return []any{
		rec.ID.String(),
		rec.RunID.String(),
		s.Symbol,
		string(s.Action),
		s.Time.UTC(),
		s.Close.String(),
		s.ShortSMA.String(),
		s.LongSMA.String(),
		string(s.Strategy),
		s.Reason,
		string(payload),
		rec.CreatedAt,
	}, nil
}

func decimalOrZero(raw *string) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var _ Journal = (*PgJournal)(nil)
