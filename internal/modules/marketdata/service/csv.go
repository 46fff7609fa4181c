package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sma_bot/internal/models"
)

// CSV колонки в порядке выгрузки: date, close, high, low, open, volume.
// Файл в формате yfinance начинается с трёх служебных строк (Price/Ticker/Date).
const (
	colDate = iota
	colClose
	colHigh
	colLow
	colOpen
	colVolume
)

var csvTimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
}

type CSVSource struct {
	path     string
	symbol   string
	skipRows int
}

func NewCSVSource(path, symbol string, skipRows int) *CSVSource {
	return &CSVSource{path: path, symbol: symbol, skipRows: skipRows}
}

func (s *CSVSource) Load() ([]models.PriceBar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadCSV(f, s.symbol, s.skipRows)
}

// Bars отдаёт бары файла в исходном порядке; порядок проверяет движок.
func (s *CSVSource) Bars(ctx context.Context) (<-chan models.PriceBar, <-chan error) {
	out := make(chan models.PriceBar)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(out)

		bars, err := s.Load()
		if err != nil {
			errc <- err
			return
		}
		for _, b := range bars {
			select {
			case out <- b:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc
}

// ReadCSV читает бары, пропуская skipRows первых строк.
// Строки с пустым close (дыры в выгрузке) пропускаются.
func ReadCSV(r io.Reader, symbol string, skipRows int) ([]models.PriceBar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []models.PriceBar
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if line <= skipRows {
			continue
		}
		if len(rec) <= colClose {
			return nil, fmt.Errorf("csv line %d: expected at least 2 columns, got %d", line, len(rec))
		}

		closeRaw := strings.TrimSpace(rec[colClose])
		if closeRaw == "" || strings.EqualFold(closeRaw, "nan") {
			continue
		}

		ts, err := parseCSVTime(rec[colDate])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		closep, err := decimal.NewFromString(closeRaw)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: close %q: %w", line, closeRaw, err)
		}

		out = append(out, models.PriceBar{
			Symbol: symbol,
			Time:   ts,
			Close:  closep,
			High:   optionalDecimal(rec, colHigh),
			Low:    optionalDecimal(rec, colLow),
			Open:   optionalDecimal(rec, colOpen),
			Volume: optionalDecimal(rec, colVolume),
		})
	}
	return out, nil
}

// WriteCSV пишет бары в том же формате, что читает ReadCSV со skipRows=3.
func WriteCSV(w io.Writer, symbol string, bars []models.PriceBar) error {
	cw := csv.NewWriter(w)

	header := [][]string{
		{"Price", "Close", "High", "Low", "Open", "Volume"},
		{"Ticker", symbol, symbol, symbol, symbol, symbol},
		{"Date", "", "", "", "", ""},
	}
	if err := cw.WriteAll(header); err != nil {
		return err
	}

	for _, b := range bars {
		rec := []string{
			formatCSVTime(b.Time),
			b.Close.String(),
			b.High.String(),
			b.Low.String(),
			b.Open.String(),
			b.Volume.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// дневные бары пишутся датой, внутридневные RFC3339
func formatCSVTime(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func parseCSVTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", raw)
}

func optionalDecimal(rec []string, col int) decimal.Decimal {
	if col >= len(rec) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(rec[col]))
	if err != nil {
		return decimal.Zero
	}
	return d
}
