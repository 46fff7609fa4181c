package notify

import (
	"context"
	"fmt"

	"sma_bot/internal/models"
)

// SignalSink шлёт в нотифайер только сделки, HOLD молча пропускается.
type SignalSink struct {
	n Notifier
}

func NewSignalSink(n Notifier) *SignalSink {
	return &SignalSink{n: n}
}

func (s *SignalSink) HandleSignal(_ context.Context, sig models.Signal) error {
	if !sig.Action.IsTrade() {
		return nil
	}
	s.n.Send(FormatSignal(sig))
	return nil
}

func FormatSignal(sig models.Signal) string {
	head := "🟢 BUY"
	if sig.Action == models.ActionExitLong {
		head = "🔴 SELL"
	}
	return fmt.Sprintf("%s %s @ %s\n%s\nSMA short=%s long=%s",
		head,
		sig.Symbol,
		sig.Close.String(),
		sig.Time.UTC().Format("2006-01-02 15:04"),
		sig.ShortSMA.StringFixed(2),
		sig.LongSMA.StringFixed(2),
	)
}
