package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"sma_bot/internal/models"
)

func TestBuildReportRoundTrip(t *testing.T) {
	rec := NewRecorder()
	r := New(newHub(t), nil, nil, NamedSink{Name: "recorder", Sink: rec})
	src := sliceSource{bars: makeBars("BTC-USDT", 10, 10, 10, 10, 20, 20, 20, 5, 5, 5)}
	require.NoError(t, r.Run(context.Background(), src))

	rep := BuildReport(2, 3, r.Stats(), rec)
	assert.Equal(t, "sma_cross(2,3)", rep.Strategy)
	assert.Equal(t, 10, rep.Bars)
	assert.Equal(t, "2023-01-01T00:00:00Z", rep.FirstBar)
	assert.Equal(t, "2023-01-10T00:00:00Z", rep.LastBar)
	require.Len(t, rep.Signals, 2)
	require.Len(t, rep.Trades, 1)
	assert.Equal(t, "20", rep.Trades[0].EntryPrice)
	assert.Equal(t, "5", rep.Trades[0].ExitPrice)
	assert.Equal(t, "-75.0000", rep.Trades[0].ReturnPct)
	assert.Equal(t, "-75.0000", rep.TotalReturnPct)
	assert.Empty(t, rep.Open)

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, WriteReport(path, rep))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var back Report
	require.NoError(t, yaml.Unmarshal(raw, &back))
	assert.Equal(t, rep, back)
}

func TestBuildReportOpenPosition(t *testing.T) {
	rec := NewRecorder()
	r := New(newHub(t), nil, nil, NamedSink{Name: "recorder", Sink: rec})
	require.NoError(t, r.Run(context.Background(), sliceSource{bars: makeBars("BTC-USDT", 10, 10, 10, 10, 20)}))

	rep := BuildReport(2, 3, r.Stats(), rec)
	assert.Empty(t, rep.Trades)
	require.Len(t, rep.Open, 1)
	assert.Equal(t, string(models.ActionEnterLong), rep.Open[0].Action)
	assert.Equal(t, "0.0000", rep.TotalReturnPct)
}

func TestRecorderIgnoresExitWithoutEntry(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.HandleSignal(context.Background(), models.Signal{
		Symbol: "BTC-USDT",
		Action: models.ActionExitLong,
		Time:   day0,
	}))
	assert.Len(t, rec.Signals(), 1)
	assert.Empty(t, rec.Trades())
}

func TestWriteReportBadPath(t *testing.T) {
	err := WriteReport(filepath.Join(t.TempDir(), "missing", "report.yaml"), Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WriteReport")
}
