package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sma_bot/internal/models"
)

type wsFrame struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Event string     `json:"event"`
	Data  [][]string `json:"data"`
}

// StreamBars: один WebSocket на таймфрейм с пачкой инструментов в args.
// Отдаёт только закрытые свечи (confirm == "1"). Канал закрывается по ctx.
func (c *Client) StreamBars(ctx context.Context, instIDs []string, timeframe string) (<-chan models.PriceBar, error) {
	bar, err := okxBar(timeframe)
	if err != nil {
		return nil, err
	}
	ch := make(chan models.PriceBar)

	go func() {
		defer close(ch)

		if len(instIDs) == 0 {
			return
		}

		channel := "candle" + bar // "1D" -> "candle1D"
		args := make([]map[string]string, 0, len(instIDs))
		for _, id := range instIDs {
			args = append(args, map[string]string{
				"channel": channel,
				"instId":  id,
			})
		}

		log := zap.L().With(zap.String("channel", channel), zap.Int("symbols", len(instIDs)))

		for {
			if ctx.Err() != nil {
				return
			}
			log.Info("ws connect")
			conn, _, err := c.wsDialer.DialContext(ctx, c.wsURL, nil)
			if err != nil {
				log.Warn("ws dial error", zap.Error(err))
				if !c.sleep(ctx) {
					return
				}
				continue
			}

			sub := map[string]any{
				"op":   "subscribe",
				"args": args,
			}
			if err := conn.WriteJSON(sub); err != nil {
				log.Warn("ws subscribe error", zap.Error(err))
				_ = conn.Close()
				if !c.sleep(ctx) {
					return
				}
				continue
			}

			// keepalive ping, иначе OKX рвёт соединение с 4004
			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(c.pingEvery)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						_ = conn.Close()
						return
					case <-stopPing:
						return
					case <-t.C:
						_ = conn.WriteMessage(websocket.TextMessage, []byte("ping"))
					}
				}
			}()

			done := c.readLoop(ctx, conn.ReadMessage, channel, ch, log)
			close(stopPing)
			_ = conn.Close()
			if done {
				return
			}
			if !c.sleep(ctx) {
				return
			}
		}
	}()

	return ch, nil
}

// readLoop возвращает true, если ctx отменён.
func (c *Client) readLoop(
	ctx context.Context,
	read func() (int, []byte, error),
	channel string,
	out chan<- models.PriceBar,
	log *zap.Logger,
) bool {
	for {
		_, msg, err := read()
		if err != nil {
			if ctx.Err() != nil {
				return true
			}
			log.Warn("ws read error", zap.Error(err))
			return false
		}
		for _, b := range decodeFrame(msg, channel) {
			select {
			case out <- b:
			case <-ctx.Done():
				return true
			}
		}
	}
}

// decodeFrame разбирает кадр OKX; pong, события подписки и незакрытые свечи пропускаются.
func decodeFrame(msg []byte, channel string) []models.PriceBar {
	if string(msg) == "pong" {
		return nil
	}
	var frame wsFrame
	if err := sonic.Unmarshal(msg, &frame); err != nil {
		return nil
	}
	if frame.Event != "" || frame.Arg.Channel != channel || len(frame.Data) == 0 {
		return nil
	}
	// у OKX может приходить несколько свечей в одном кадре
	out := make([]models.PriceBar, 0, len(frame.Data))
	for _, row := range frame.Data {
		if len(row) < 9 {
			continue // без confirm не знаем, закрыта ли свеча
		}
		if b, ok := parseRow(frame.Arg.InstID, row); ok {
			out = append(out, b)
		}
	}
	return out
}

func (c *Client) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.reconnectDelay):
		return true
	}
}
