package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sma_bot/internal/models"
)

// streamMaxLen: примерный потолок стрима (XADD MAXLEN ~).
const streamMaxLen int64 = 10000

// Publisher отдаёт сигналы наружу (дашборд).
type Publisher interface {
	HandleSignal(ctx context.Context, sig models.Signal) error
	Close() error
}

// Payload: то, что видит подписчик канала и читатель стрима.
type Payload struct {
	RunID    string `json:"run_id"`
	Symbol   string `json:"symbol"`
	Action   string `json:"action"`
	Time     int64  `json:"time"` // unix ms
	Close    string `json:"close"`
	ShortSMA string `json:"short_sma"`
	LongSMA  string `json:"long_sma"`
	Strategy string `json:"strategy"`
}

func NewPayload(runID uuid.UUID, sig models.Signal) Payload {
	return Payload{
		RunID:    runID.String(),
		Symbol:   sig.Symbol,
		Action:   string(sig.Action),
		Time:     sig.Time.UnixMilli(),
		Close:    sig.Close.String(),
		ShortSMA: sig.ShortSMA.String(),
		LongSMA:  sig.LongSMA.String(),
		Strategy: string(sig.Strategy),
	}
}

// RedisPublisher: Pub/Sub для живых подписчиков, Stream для догоняющих.
type RedisPublisher struct {
	rdb     *redis.Client
	runID   uuid.UUID
	channel string
	stream  string
}

func NewRedisPublisher(rdb *redis.Client, runID uuid.UUID, channel, stream string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, runID: runID, channel: channel, stream: stream}
}

func (p *RedisPublisher) HandleSignal(ctx context.Context, sig models.Signal) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("RedisPublisher.HandleSignal: %w", err)
		}
	}()

	body, err := sonic.Marshal(NewPayload(p.runID, sig))
	if err != nil {
		return err
	}

	if p.channel != "" {
		if err := p.rdb.Publish(ctx, p.channel, body).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", p.channel, err)
		}
	}
	if p.stream != "" {
		args := &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"payload": body,
			},
		}
		if err := p.rdb.XAdd(ctx, args).Err(); err != nil {
			return fmt.Errorf("stream append %s: %w", p.stream, err)
		}
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }

// Noop: шина выключена (redis.addr пуст).
type Noop struct{}

func (Noop) HandleSignal(context.Context, models.Signal) error { return nil }
func (Noop) Close() error                                      { return nil }

var (
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = Noop{}
)
