package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/storage"
	"portfolioLab/internal/structure"
	"portfolioLab/internal/timeseries"
)

func TestFormatUsage(t *testing.T) {
	assert.Equal(t, "No usage recorded in the last 7 days.", formatUsage(nil, 7))

	text := formatUsage(map[string]*storage.UsageStats{
		"portfolio": {Count: 3, Commands: map[string]int{"port": 2, "compare": 1}},
		"backtest":  {Count: 1, Commands: map[string]int{"backtest": 1}},
	}, 7)
	assert.Contains(t, text, "Total Commands: 4")
	assert.Contains(t, text, "💼 Portfolio analysis (3 commands, 75.0%)")
	assert.Less(t, strings.Index(text, "/port: 2"), strings.Index(text, "/compare: 1"))
	assert.Less(t, strings.Index(text, "Portfolio analysis"), strings.Index(text, "Backtests"))
}

func TestDescribeWeightsAndMatrix(t *testing.T) {
	assert.Equal(t, "SPY 60.0%, TLT 40.0%",
		describeWeights([]string{"SPY", "TLT"}, portfolio.WeightVector{"SPY": 0.6, "TLT": 0.4}))

	out := formatMatrix(portfolio.Matrix{
		Assets: []string{"SPY", "BRK-B.X"},
		Values: [][]float64{{1, 0.25}, {0.25, 1}},
	})
	assert.Contains(t, out, "BRK-B.")
	assert.Contains(t, out, "   0.25")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestFormatStructureDeviation(t *testing.T) {
	out := formatStructure("S", &structure.Report{
		Hurst:  0.5,
		Scales: []structure.ScaleRow{{Scale: 5, VarRatio: 5.5, Theoretical: 5, Deviation: 1.1}},
	})
	assert.Contains(t, out, "5d: ratio 5.50 vs 5 (+10.0% vs random walk)")
}

func TestFormatRollingSharpe(t *testing.T) {
	assert.Empty(t, formatRollingSharpe(60, timeseries.Series{}))
	idx := []time.Time{time.Unix(0, 0), time.Unix(86400, 0), time.Unix(2*86400, 0)}
	out := formatRollingSharpe(60, timeseries.NewSeries(idx, []float64{1.234, -0.5, 0.8}))
	assert.Contains(t, out, "Rolling Sharpe (60d)")
	assert.Contains(t, out, "Last: 0.80  Min: -0.50  Max: 1.23")
}
