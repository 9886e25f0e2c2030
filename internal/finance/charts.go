package finance

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/vicanso/go-charts/v2"

	"portfolioLab/internal/backtest"
	"portfolioLab/internal/metrics"
	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/structure"
	"portfolioLab/internal/timeseries"
)

var errNoChartData = errors.New("not enough data points")

// Charts renders analysis results as PNG images.
type Charts struct {
	cache *chartCache
}

func NewCharts(m *metrics.Registry) *Charts {
	return &Charts{cache: newChartCache(chartCacheTTL, m)}
}

// cacheKey fingerprints the rendered inputs.
func cacheKey(kind string, parts ...any) string {
	h := fnv.New64a()
	fmt.Fprint(h, parts...)
	return fmt.Sprintf("%s-%x", kind, h.Sum64())
}

func dateLabels(index []time.Time) []string {
	layout := "Jan 02"
	if len(index) > 60 {
		layout = "Jan '06"
	}
	out := make([]string, len(index))
	for i, t := range index {
		out[i] = t.UTC().Format(layout)
	}
	return out
}

func splitNumber(n int) int {
	if n > 30 {
		return 6
	}
	s := n / 3
	if s < 3 {
		s = 3
	}
	return s
}

// paddedRange returns a y-axis range with 5% headroom over every series.
func paddedRange(values [][]float64) (*float64, *float64) {
	mn, mx := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			mn = math.Min(mn, v)
			mx = math.Max(mx, v)
		}
	}
	if math.IsInf(mn, 0) {
		return nil, nil
	}
	pad := (mx - mn) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(mx)*0.05, 1)
	}
	lo, hi := mn-pad, mx+pad
	return &lo, &hi
}

func renderLines(title, subtitle string, labels []string, names []string, values [][]float64) ([]byte, error) {
	if len(labels) < 2 {
		return nil, errNoChartData
	}
	yMin, yMax := paddedRange(values)
	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: splitNumber(len(labels))}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: yMin, Max: yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names, Top: charts.PositionBottom}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// ValueChart plots the portfolio value against each constituent rebased to 100 on the
// first date of the value series.
func (c *Charts) ValueChart(title string, a *portfolio.Analysis, prices timeseries.PriceTable) ([]byte, error) {
	if a == nil || a.Value.Len() < 2 {
		return nil, errNoChartData
	}
	return c.cache.render(cacheKey("value", title, a.Value.Values, prices.Assets), func() ([]byte, error) {
		row := make(map[int64]int, prices.Rows())
		for i, t := range prices.Index {
			row[t.Unix()] = i
		}
		names := []string{"Portfolio"}
		values := [][]float64{a.Value.Values}
		for _, asset := range prices.Assets {
			col := prices.Prices[asset]
			base, last := 0.0, 100.0
			line := make([]float64, a.Value.Len())
			for i, t := range a.Value.Index {
				if r, ok := row[t.Unix()]; ok {
					if base == 0 {
						base = col[r]
					}
					last = col[r] / base * 100
				}
				line[i] = last
			}
			names = append(names, asset)
			values = append(values, line)
		}
		m := a.Portfolio.Metrics
		subtitle := fmt.Sprintf("Return: %.2f%% | Sharpe: %.2f | Vol: %.2f%% | MaxDD: %.2f%%",
			m.AnnualReturn, m.Sharpe, m.Volatility, m.MaxDrawdown)
		return renderLines(title, subtitle, dateLabels(a.Value.Index), names, values)
	})
}

// DrawdownChart plots the percentage drawdown of a value series.
func (c *Charts) DrawdownChart(title string, value timeseries.Series) ([]byte, error) {
	return c.cache.render(cacheKey("drawdown", title, value.Values), func() ([]byte, error) {
		dd := portfolio.DrawdownSeries(value)
		return renderLines(title, fmt.Sprintf("Max drawdown: %.2f%%", portfolio.MaxDrawdown(value.Values)),
			dateLabels(dd.Index), []string{"Drawdown %"}, [][]float64{dd.Values})
	})
}

// RollingSharpeChart plots the trailing-window Sharpe ratio.
func (c *Charts) RollingSharpeChart(window int, rs timeseries.Series) ([]byte, error) {
	title := fmt.Sprintf("Rolling Sharpe (%dd)", window)
	return c.cache.render(cacheKey("rolling", title, rs.Values), func() ([]byte, error) {
		return renderLines(title, fmt.Sprintf("Last: %.2f", rs.Last()), dateLabels(rs.Index), []string{"Sharpe"}, [][]float64{rs.Values})
	})
}

// HurstChart draws one bar per asset plus the portfolio.
func (c *Charts) HurstChart(title string, rep *structure.Report) ([]byte, error) {
	if rep == nil {
		return nil, errNoChartData
	}
	names := []string{"Portfolio"}
	values := []float64{rep.Hurst}
	for _, ah := range rep.Assets {
		names = append(names, ah.Asset)
		values = append(values, ah.Hurst)
	}
	return c.cache.render(cacheKey("hurst", title, names, values), func() ([]byte, error) {
		yMin, yMax := 0.0, 1.0
		painter, err := charts.BarRender([][]float64{values},
			charts.TitleTextOptionFunc(title, "H > 0.5 persistent, H < 0.5 anti-persistent"),
			charts.XAxisDataOptionFunc(names),
			charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 4}),
			charts.ThemeOptionFunc(charts.ThemeLight),
			charts.WidthOptionFunc(800),
			charts.HeightOptionFunc(500),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to render chart: %w", err)
		}
		return painter.Bytes()
	})
}

// EquityChart overlays the equity curves of backtest results.
func (c *Charts) EquityChart(symbol string, results []*backtest.Result) ([]byte, error) {
	if len(results) == 0 {
		return nil, errNoChartData
	}
	index := results[0].Equity.Index
	names := make([]string, 0, len(results))
	values := make([][]float64, 0, len(results))
	for _, r := range results {
		names = append(names, r.Label)
		values = append(values, r.Equity.Values)
	}
	title := strings.ToUpper(symbol) + " • strategy equity"
	return c.cache.render(cacheKey("equity", title, values), func() ([]byte, error) {
		return renderLines(title, fmt.Sprintf("%d strategies", len(results)), dateLabels(index), names, values)
	})
}
