package bus

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"sma_bot/internal/models"
	"sma_bot/internal/modules/bus/service"
	"sma_bot/internal/modules/config"
)

func TestNewPublisherConnectsToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Channel = "signals"
	cfg.Redis.Stream = "signals:stream"

	lc := fxtest.NewLifecycle(t)
	p, err := NewPublisher(context.Background(), lc, cfg, models.NewRun())
	require.NoError(t, err)
	_, ok := p.(*service.RedisPublisher)
	assert.True(t, ok)

	lc.RequireStart()
	lc.RequireStop()
}

func TestNewPublisherFailsWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{}
	cfg.Redis.Addr = addr

	_, err := NewPublisher(context.Background(), fxtest.NewLifecycle(t), cfg, models.NewRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
