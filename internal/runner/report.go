package runner

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"sma_bot/internal/models"
)

const reportTimeLayout = "2006-01-02T15:04:05Z07:00"

type Report struct {
	Strategy    string `yaml:"strategy"`
	ShortPeriod int    `yaml:"short_period"`
	LongPeriod  int    `yaml:"long_period"`
	Bars        int    `yaml:"bars"`
	Rejected    int    `yaml:"rejected,omitempty"`
	FirstBar    string `yaml:"first_bar,omitempty"`
	LastBar     string `yaml:"last_bar,omitempty"`

	Signals []ReportSignal `yaml:"signals"`
	Trades  []ReportTrade  `yaml:"trades"`
	Open    []ReportSignal `yaml:"open_positions,omitempty"`

	// сложный процент по закрытым сделкам
	TotalReturnPct string `yaml:"total_return_pct"`
}

type ReportSignal struct {
	Time     string `yaml:"time"`
	Symbol   string `yaml:"symbol"`
	Action   string `yaml:"action"`
	Close    string `yaml:"close"`
	ShortSMA string `yaml:"short_sma"`
	LongSMA  string `yaml:"long_sma"`
}

type ReportTrade struct {
	Symbol     string `yaml:"symbol"`
	EntryTime  string `yaml:"entry_time"`
	EntryPrice string `yaml:"entry_price"`
	ExitTime   string `yaml:"exit_time"`
	ExitPrice  string `yaml:"exit_price"`
	ReturnPct  string `yaml:"return_pct"`
}

// BuildReport собирает отчёт прогона: без кэша и комиссий, только раунды.
func BuildReport(shortPeriod, longPeriod int, stats Stats, rec *Recorder) Report {
	rep := Report{
		Strategy:    fmt.Sprintf("%s(%d,%d)", models.StrategySMACross, shortPeriod, longPeriod),
		ShortPeriod: shortPeriod,
		LongPeriod:  longPeriod,
		Bars:        stats.Bars,
		Rejected:    stats.Rejected,
		FirstBar:    formatTime(stats.FirstBar),
		LastBar:     formatTime(stats.LastBar),
		Signals:     []ReportSignal{},
		Trades:      []ReportTrade{},
	}

	for _, sig := range rec.Signals() {
		rep.Signals = append(rep.Signals, reportSignal(sig))
	}

	growth := decimal.NewFromInt(1)
	for _, t := range rec.Trades() {
		rep.Trades = append(rep.Trades, ReportTrade{
			Symbol:     t.Symbol,
			EntryTime:  formatTime(t.EntryTime),
			EntryPrice: t.EntryPrice.String(),
			ExitTime:   formatTime(t.ExitTime),
			ExitPrice:  t.ExitPrice.String(),
			ReturnPct:  t.ReturnPct.StringFixed(4),
		})
		growth = growth.Mul(decimal.NewFromInt(1).Add(t.ReturnPct.Div(hundred)))
	}
	rep.TotalReturnPct = growth.Sub(decimal.NewFromInt(1)).Mul(hundred).StringFixed(4)

	for _, sig := range rec.Open() {
		rep.Open = append(rep.Open, reportSignal(sig))
	}
	return rep
}

func WriteReport(path string, rep Report) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("WriteReport %s: %w", path, err)
		}
	}()
	raw, err := yaml.Marshal(rep)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func reportSignal(sig models.Signal) ReportSignal {
	return ReportSignal{
		Time:     formatTime(sig.Time),
		Symbol:   sig.Symbol,
		Action:   string(sig.Action),
		Close:    sig.Close.String(),
		ShortSMA: sig.ShortSMA.StringFixed(4),
		LongSMA:  sig.LongSMA.StringFixed(4),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(reportTimeLayout)
}

func sortSignals(in []models.Signal) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].Symbol != in[j].Symbol {
			return in[i].Symbol < in[j].Symbol
		}
		return in[i].Time.Before(in[j].Time)
	})
}
