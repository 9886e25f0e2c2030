package finance

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioLab/internal/backtest"
	"portfolioLab/internal/metrics"
	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/storage"
	"portfolioLab/internal/structure"
	"portfolioLab/internal/timeseries"
)

var pngMagic = []byte("\x89PNG")

func dailyIndex(n int) []time.Time {
	out := make([]time.Time, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func samplePrices(t *testing.T) timeseries.PriceTable {
	t.Helper()
	idx := dailyIndex(40)
	a := make([]float64, 40)
	b := make([]float64, 40)
	for i := range a {
		a[i] = 100 + float64(i)
		b[i] = 50 + float64(i%7)
	}
	table, err := timeseries.NewPriceTable(idx, []string{"AAA", "BBB"}, map[string][]float64{"AAA": a, "BBB": b})
	require.NoError(t, err)
	return table
}

func TestChartsRenderPNG(t *testing.T) {
	prices := samplePrices(t)
	w := portfolio.EqualWeights(prices.Assets)
	an, err := portfolio.Analyze(prices, w, portfolio.Options{})
	require.NoError(t, err)
	rep, err := structure.Analyze(prices, w, structure.Config{RegimeWindow: 10})
	require.NoError(t, err)

	c := NewCharts(nil)
	img, err := c.ValueChart("Portfolio", an, prices)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = c.DrawdownChart("Drawdown", an.Value)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = c.HurstChart("Hurst", rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	bars := backtest.Bars{Index: prices.Index, Open: prices.Prices["AAA"], High: prices.Prices["AAA"], Low: prices.Prices["AAA"], Close: prices.Prices["AAA"]}
	res, err := backtest.RunAll(bars, backtest.Config{})
	require.NoError(t, err)
	img, err = c.EquityChart("AAA", res)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestChartsRejectShortSeries(t *testing.T) {
	c := NewCharts(nil)
	_, err := c.DrawdownChart("dd", timeseries.NewSeries(dailyIndex(1), []float64{100}))
	assert.ErrorIs(t, err, errNoChartData)
	_, err = c.ValueChart("v", nil, timeseries.PriceTable{})
	assert.ErrorIs(t, err, errNoChartData)
}

func TestChartCacheTTL(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := newChartCache(time.Minute, m)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	builds := 0
	build := func() ([]byte, error) { builds++; return []byte{1, 2, 3}, nil }

	_, err := c.render("k", build)
	require.NoError(t, err)
	img, err := c.render("k", build)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, img)
	assert.Equal(t, 1, builds)

	now = now.Add(2 * time.Minute)
	_, err = c.render("k", build)
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartCacheHits.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChartCacheHits.WithLabelValues("miss")))
}

func TestChartCacheSweepsExpiredOnSet(t *testing.T) {
	c := newChartCache(time.Minute, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.set("a", []byte{1})
	c.set("b", []byte{2})
	now = now.Add(30 * time.Second)
	c.set("c", []byte{3})
	assert.Len(t, c.entries, 3)

	now = now.Add(45 * time.Second)
	c.set("d", []byte{4})
	assert.Len(t, c.entries, 2)
	assert.Contains(t, c.entries, "c")
	assert.Contains(t, c.entries, "d")
}

func TestRollingSharpeChart(t *testing.T) {
	c := NewCharts(nil)
	idx := dailyIndex(30)
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 0.5 + float64(i%5)*0.1
	}
	img, err := c.RollingSharpeChart(20, timeseries.NewSeries(idx, vals))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = c.RollingSharpeChart(20, timeseries.Series{})
	assert.ErrorIs(t, err, errNoChartData)
}

func TestCleanBars(t *testing.T) {
	b := cleanBars(dailyBars{
		Time:  []int64{1, 2, 3},
		Open:  []float64{0, 9, 10},
		High:  []float64{11, 0, 12},
		Low:   []float64{9, 8, 0},
		Close: []float64{10, 0, 11},
	})
	assert.Equal(t, []int64{1, 3}, b.Time)
	assert.Equal(t, []float64{10, 10}, b.Open)
	assert.Equal(t, []float64{11, 12}, b.High)
	assert.Equal(t, []float64{9, 11}, b.Low)

	f := filterToTargetDays(dailyBars{
		Time:  []int64{0, 86400, 2 * 86400, 3 * 86400},
		Open:  []float64{1, 2, 3, 4},
		High:  []float64{1, 2, 3, 4},
		Low:   []float64{1, 2, 3, 4},
		Close: []float64{1, 2, 3, 4},
	}, 1)
	assert.Equal(t, []float64{3, 4}, f.Close)
}

func TestUsageCharts(t *testing.T) {
	c := NewCharts(nil)
	_, err := c.UsagePie(nil, 7)
	assert.ErrorIs(t, err, errNoChartData)

	img, err := c.UsagePie(map[string]*storage.UsageStats{
		"portfolio": {Count: 3, Commands: map[string]int{"port": 2, "compare": 1}},
		"backtest":  {Count: 1, Commands: map[string]int{"backtest": 1}},
	}, 7)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = c.UsageTrend(map[string][]storage.TimeSeriesPoint{
		"portfolio": {{Timestamp: 0, Count: 2}, {Timestamp: 86400, Count: 1}},
		"backtest":  {{Timestamp: 86400, Count: 4}},
	}, 86400, 7)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = c.UsageTrend(map[string][]storage.TimeSeriesPoint{
		"portfolio": {{Timestamp: 0, Count: 2}},
	}, 3600, 1)
	assert.ErrorIs(t, err, errNoChartData)
}
