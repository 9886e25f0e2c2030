package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/vicanso/go-charts/v2"

	"portfolioLab/internal/storage"
)

// UsagePie shows how logged commands split across categories. Usage changes with
// every command so these charts skip the cache.
func (c *Charts) UsagePie(stats map[string]*storage.UsageStats, days int) ([]byte, error) {
	cats := sortedKeys(stats)
	if len(cats) == 0 {
		return nil, errNoChartData
	}
	total := 0
	for _, cat := range cats {
		total += stats[cat].Count
	}
	values := make([]float64, len(cats))
	labels := make([]string, len(cats))
	for i, cat := range cats {
		values[i] = float64(stats[cat].Count)
		labels[i] = fmt.Sprintf("%s (%.1f%%)", cat, values[i]/float64(total)*100)
	}

	painter, err := charts.PieRender(values,
		charts.TitleTextOptionFunc(fmt.Sprintf("Commands by category (%d days)", days)),
		charts.LegendOptionFunc(charts.LegendOption{Data: labels, Top: charts.PositionBottom}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return painter.Bytes()
}

// UsageTrend plots per-category counts per bucket. Buckets a category never hit are
// drawn as zero.
func (c *Charts) UsageTrend(series map[string][]storage.TimeSeriesPoint, bucket int64, days int) ([]byte, error) {
	seen := map[int64]bool{}
	var stamps []int64
	for _, pts := range series {
		for _, p := range pts {
			if !seen[p.Timestamp] {
				seen[p.Timestamp] = true
				stamps = append(stamps, p.Timestamp)
			}
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	layout := "Jan 02"
	if bucket < 86400 {
		layout = "15:04"
	}
	labels := make([]string, len(stamps))
	pos := make(map[int64]int, len(stamps))
	for i, ts := range stamps {
		labels[i] = time.Unix(ts, 0).UTC().Format(layout)
		pos[ts] = i
	}

	cats := sortedKeys(series)
	values := make([][]float64, len(cats))
	for i, cat := range cats {
		values[i] = make([]float64, len(stamps))
		for _, p := range series[cat] {
			values[i][pos[p.Timestamp]] = float64(p.Count)
		}
	}
	return renderLines(fmt.Sprintf("Commands over time (%d days)", days), "", labels, cats, values)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
