package telegram

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"portfolioLab/internal/backtest"
	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/storage"
	"portfolioLab/internal/structure"
	"portfolioLab/internal/timeseries"
)

// formatAnalysis renders the portfolio card: headline metrics, benchmark block,
// per-asset lines and the correlation matrix.
func formatAnalysis(title string, a *portfolio.Analysis) string {
	var b strings.Builder
	m := a.Portfolio.Metrics
	fmt.Fprintf(&b, "💼 %s\n\n", title)

	b.WriteString("Returns\n")
	fmt.Fprintf(&b, "  Annual return: %.2f%%\n", m.AnnualReturn)
	fmt.Fprintf(&b, "  Volatility: %.2f%%  Downside dev: %.2f%%\n", m.Volatility, m.DownsideDeviation)
	fmt.Fprintf(&b, "  Sharpe: %.2f  Sortino: %s  Calmar: %.2f\n", m.Sharpe, m.Sortino, m.Calmar)
	fmt.Fprintf(&b, "  Information ratio: %.2f\n", m.InformationRatio)

	b.WriteString("\nDrawdowns\n")
	fmt.Fprintf(&b, "  Max: %.2f%%  Current: %.2f%%\n", m.MaxDrawdown, m.CurrentDrawdown)
	fmt.Fprintf(&b, "  Ulcer index: %.2f  Recovery factor: %.2f\n", m.UlcerIndex, m.RecoveryFactor)

	b.WriteString("\nTails\n")
	fmt.Fprintf(&b, "  VaR95: %.2f%%  CVaR95: %.2f%%  VaR99: %.2f%%\n", m.VaR95, m.CVaR95, m.VaR99)
	fmt.Fprintf(&b, "  Skew: %.2f  Kurtosis: %.2f  Tail ratio: %.2f\n", m.Skewness, m.Kurtosis, m.TailRatio)
	fmt.Fprintf(&b, "  Win rate: %.2f%%  Profit factor: %s\n", m.WinRate, m.ProfitFactor)

	b.WriteString("\nDiversification\n")
	fmt.Fprintf(&b, "  Ratio: %.2f  Effective assets: %.2f\n", m.DiversificationRatio, m.EffectiveAssets)

	if bm := a.Portfolio.Benchmark; bm != nil {
		b.WriteString("\nBenchmark\n")
		fmt.Fprintf(&b, "  Beta: %.2f  Alpha: %.2f%%  Treynor: %.2f\n", bm.Beta, bm.Alpha, bm.Treynor)
	}

	b.WriteString("\nAssets\n")
	for _, name := range a.AssetOrder {
		am := a.Assets[name]
		fmt.Fprintf(&b, "  %s (%.1f%%): ret %.2f%% vol %.2f%% sharpe %.2f sortino %s mdd %.2f%% var95 %.2f%%\n",
			name, am.Weight, am.Return, am.Volatility, am.Sharpe, am.Sortino, am.MaxDrawdown, am.VaR95)
	}

	if len(a.Correlation.Assets) > 1 {
		b.WriteString("\nCorrelation\n")
		b.WriteString(formatMatrix(a.Correlation))
	}
	return b.String()
}

func formatMatrix(m portfolio.Matrix) string {
	var b strings.Builder
	b.WriteString("        ")
	for _, a := range m.Assets {
		fmt.Fprintf(&b, "%7s", truncate(a, 6))
	}
	b.WriteString("\n")
	for i, a := range m.Assets {
		fmt.Fprintf(&b, "  %-6s", truncate(a, 6))
		for j := range m.Assets {
			fmt.Fprintf(&b, "%7.2f", m.Values[i][j])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// formatRollingSharpe summarises the trailing-window Sharpe path.
func formatRollingSharpe(window int, rs timeseries.Series) string {
	if rs.Len() == 0 {
		return ""
	}
	lo, hi := rs.Values[0], rs.Values[0]
	for _, v := range rs.Values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return fmt.Sprintf("\nRolling Sharpe (%dd)\n  Last: %.2f  Min: %.2f  Max: %.2f\n",
		window, portfolio.Round2(rs.Last()), portfolio.Round2(lo), portfolio.Round2(hi))
}

// formatStructure renders the advanced-analytics report.
func formatStructure(title string, r *structure.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔬 %s\n\n", title)
	fmt.Fprintf(&b, "Hurst exponent: %.3f (%s)\n", r.Hurst, structure.Classify(r.Hurst))
	fmt.Fprintf(&b, "%s\n", r.Advice)
	for _, ah := range r.Assets {
		fmt.Fprintf(&b, "  %s: %.3f\n", ah.Asset, ah.Hurst)
	}

	if len(r.Scales) > 0 {
		b.WriteString("\nMulti-scale variance\n")
		for _, s := range r.Scales {
			fmt.Fprintf(&b, "  %3dd: ratio %.2f vs %.0f (%+.1f%% vs random walk)\n", s.Scale, s.VarRatio, s.Theoretical, (s.Deviation-1)*100)
		}
	}

	if len(r.VarianceRatios) > 0 {
		b.WriteString("\nVariance ratio test\n")
		for _, v := range r.VarianceRatios {
			fmt.Fprintf(&b, "  lag %2d: VR %.3f z %.2f %s\n", v.Lag, v.Ratio, v.Z, v.Interpretation)
		}
	}

	if len(r.Regimes) > 0 {
		counts := structure.RegimeCounts(r.Regimes)
		labels := make([]string, 0, len(counts))
		for k := range counts {
			labels = append(labels, string(k))
		}
		sort.Strings(labels)
		b.WriteString("\nRegimes\n")
		fmt.Fprintf(&b, "  Current: %s\n", structure.Current(r.Regimes))
		for _, l := range labels {
			n := counts[structure.Regime(l)]
			fmt.Fprintf(&b, "  %s: %d days (%.1f%%)\n", l, n, float64(n)/float64(len(r.Regimes))*100)
		}
	}
	return b.String()
}

// formatBacktest renders one line per strategy sorted by total return.
func formatBacktest(symbol, window string, results []*backtest.Result) string {
	sorted := make([]*backtest.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metrics.TotalReturn > sorted[j].Metrics.TotalReturn
	})
	var b strings.Builder
	fmt.Fprintf(&b, "📈 Backtest %s (%s)\n\n", symbol, window)
	for _, r := range sorted {
		m := r.Metrics
		fmt.Fprintf(&b, "%s\n  total %.2f%% annual %.2f%% vol %.2f%% sharpe %.2f\n  mdd %.2f%% win %.2f%% pf %s calmar %.2f\n",
			r.Label, m.TotalReturn, m.AnnualizedReturn, m.Volatility, m.Sharpe, m.MaxDrawdown, m.WinRate, m.ProfitFactor, m.Calmar)
	}
	return b.String()
}

// formatComparison renders candidates side by side, best Sharpe first.
func formatComparison(cats []portfolio.NamedCatalogue) string {
	sorted := make([]portfolio.NamedCatalogue, len(cats))
	copy(sorted, cats)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sharpe > sorted[j].Sharpe })

	var b strings.Builder
	b.WriteString("⚖️ Portfolio comparison\n\n")
	for i, c := range sorted {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		fmt.Fprintf(&b, "  ret %.2f%% vol %.2f%% sharpe %.2f sortino %s\n", c.AnnualReturn, c.Volatility, c.Sharpe, c.Sortino)
		fmt.Fprintf(&b, "  mdd %.2f%% var95 %.2f%% div %.2f eff.n %.2f\n", c.MaxDrawdown, c.VaR95, c.DiversificationRatio, c.EffectiveAssets)
	}
	return b.String()
}

// describeWeights renders "AAPL 60.0%, MSFT 40.0%" in symbol order.
func describeWeights(symbols []string, w portfolio.WeightVector) string {
	parts := make([]string, 0, len(symbols))
	for _, s := range symbols {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", s, w[s]*100))
	}
	return strings.Join(parts, ", ")
}

// formatUsage lists categories by volume with their top commands.
func formatUsage(stats map[string]*storage.UsageStats, days int) string {
	if len(stats) == 0 {
		return "No usage recorded in the last " + fmt.Sprint(days) + " days."
	}
	cats := make([]string, 0, len(stats))
	total := 0
	for c, st := range stats {
		cats = append(cats, c)
		total += st.Count
	}
	sort.Slice(cats, func(i, j int) bool {
		if stats[cats[i]].Count != stats[cats[j]].Count {
			return stats[cats[i]].Count > stats[cats[j]].Count
		}
		return cats[i] < cats[j]
	})

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Usage Analytics (%d days)\n\nTotal Commands: %d\n", days, total)
	for _, c := range cats {
		st := stats[c]
		fmt.Fprintf(&b, "\n%s (%d commands, %.1f%%)\n", categoryLabel(c), st.Count, float64(st.Count)/float64(total)*100)
		cmds := make([]string, 0, len(st.Commands))
		for cmd := range st.Commands {
			cmds = append(cmds, cmd)
		}
		sort.Slice(cmds, func(i, j int) bool {
			if st.Commands[cmds[i]] != st.Commands[cmds[j]] {
				return st.Commands[cmds[i]] > st.Commands[cmds[j]]
			}
			return cmds[i] < cmds[j]
		})
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "  • /%s: %d\n", cmd, st.Commands[cmd])
		}
	}
	return b.String()
}

func categoryLabel(c string) string {
	switch c {
	case "portfolio":
		return "💼 Portfolio analysis"
	case "structure":
		return "🔬 Structure analytics"
	case "backtest":
		return "📈 Backtests"
	case "commentary":
		return "🤖 AI commentary"
	default:
		return "• " + c
	}
}

const helpText = "Commands\n\n" +
	"- /port S1,S2 [w=60,40] [reb=never|monthly|quarterly|yearly] [1y] [bench=SPY] - Portfolio metrics and value chart\n" +
	"- /port S1 0.5 S2 0.5 [1y] - Same with symbol/weight pairs\n" +
	"- /advanced S1,S2 [w=...] [2y] - Hurst exponent, variance ratios, multi-scale variance and regimes\n" +
	"- /compare S1,S2 | S3,S4 w=70,30 [1y] - Compare portfolios side by side\n" +
	"- /backtest [SYMBOL] [5y] [strategy] - Backtest single-asset strategies\n" +
	"- /explain S1,S2 [w=...] [1y] - AI commentary on the analysis\n" +
	"- /usage [days] - Bot usage statistics\n" +
	"\nWindows: 10d, 3w, 6m, 1y, 5y. Invalid weights fall back to equal weights."
