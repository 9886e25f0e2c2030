package portfolio

import (
	"math"

	"portfolioLab/internal/stats"
	"portfolioLab/internal/timeseries"
)

var sqrtYear = math.Sqrt(TradingDays)

// AnnualReturn compounds the returns to a CAGR in percent; an empty series is 0.
func AnnualReturn(r []float64) float64 {
	n := len(r)
	if n == 0 {
		return 0
	}
	growth := 1.0
	for _, x := range r {
		growth *= 1 + x
	}
	return (math.Pow(growth, TradingDays/float64(n)) - 1) * 100
}

// TotalReturn is the compounded return over the whole series in percent.
func TotalReturn(r []float64) float64 {
	growth := 1.0
	for _, x := range r {
		growth *= 1 + x
	}
	return (growth - 1) * 100
}

// Volatility is the annualised sample std in percent.
func Volatility(r []float64) float64 {
	return stats.StdDev(r) * sqrtYear * 100
}

// DownsideDeviation is Volatility restricted to negative returns.
func DownsideDeviation(r []float64) float64 {
	return Volatility(below(r, 0))
}

func Sharpe(r []float64, rf float64) float64 {
	vol := Volatility(r) / 100
	if vol == 0 {
		return 0
	}
	return (AnnualReturn(r)/100 - rf) / vol
}

// Sortino uses returns below target/252 as the downside. With no downside
// observation the ratio is unbounded when the return beats rf, else 0. A downside
// whose deviation is 0 (a single loss, or identical losses) gives 0.
func Sortino(r []float64, rf, target float64) Ratio {
	ret := AnnualReturn(r) / 100
	down := below(r, target/TradingDays)
	if len(down) == 0 {
		if ret > rf {
			return Unbounded()
		}
		return Finite(0)
	}
	downStd := stats.StdDev(down) * sqrtYear
	if downStd == 0 {
		return Finite(0)
	}
	return Finite((ret - rf) / downStd)
}

// Calmar divides the annual return by the absolute max drawdown of the value series.
func Calmar(r, value []float64) float64 {
	mdd := math.Abs(MaxDrawdown(value) / 100)
	if mdd == 0 {
		return 0
	}
	return (AnnualReturn(r) / 100) / mdd
}

// InformationRatio is annualised mean excess over tracking error, on aligned observations.
func InformationRatio(r, bench timeseries.Series) float64 {
	x, y := timeseries.Align(r, bench)
	excess := make([]float64, len(x))
	for i := range x {
		excess[i] = x[i] - y[i]
	}
	te := stats.StdDev(excess) * sqrtYear
	if te == 0 {
		return 0
	}
	return stats.Mean(excess) * TradingDays / te
}

// ValueAtRisk is the (1-confidence) percentile of returns in percent.
func ValueAtRisk(r []float64, confidence float64) float64 {
	return stats.Percentile(r, (1-confidence)*100) * 100
}

// ConditionalVaR averages the returns at or below the VaR threshold, in percent.
func ConditionalVaR(r []float64, confidence float64) float64 {
	threshold := stats.Percentile(r, (1-confidence)*100)
	var tail []float64
	for _, x := range r {
		if x <= threshold {
			tail = append(tail, x)
		}
	}
	if len(tail) == 0 {
		return 0
	}
	return stats.Mean(tail) * 100
}

func TailRatio(r []float64) float64 {
	left := math.Abs(stats.Percentile(r, 5))
	if left == 0 {
		return 0
	}
	return stats.Percentile(r, 95) / left
}

func WinRate(r []float64) float64 {
	if len(r) == 0 {
		return 0
	}
	wins := 0
	for _, x := range r {
		if x > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r)) * 100
}

// ProfitFactor is gross gains over gross losses; no losses is unbounded when there were gains.
func ProfitFactor(r []float64) Ratio {
	gains, losses := 0.0, 0.0
	for _, x := range r {
		if x > 0 {
			gains += x
		} else if x < 0 {
			losses += x
		}
	}
	losses = math.Abs(losses)
	if losses == 0 {
		if gains > 0 {
			return Unbounded()
		}
		return Finite(0)
	}
	return Finite(gains / losses)
}

// DiversificationRatio is the weighted sum of asset vols over portfolio vol; 1 when the
// portfolio does not move.
func DiversificationRatio(returns timeseries.ReturnTable, weights WeightVector) float64 {
	weighted := 0.0
	for _, a := range weights.Keys() {
		if returns.Has(a) {
			weighted += weights[a] * stats.StdDev(returns.Returns[a]) * sqrtYear
		}
	}
	portVol := stats.StdDev(WeightedReturns(returns, weights).Values) * sqrtYear
	if portVol == 0 {
		return 1.0
	}
	return weighted / portVol
}

// EffectiveAssets is the inverse Herfindahl index of the weights.
func EffectiveAssets(weights WeightVector) float64 {
	hhi := 0.0
	for _, w := range weights {
		hhi += w * w
	}
	if hhi == 0 {
		return 0
	}
	return 1 / hhi
}

// Beta is the covariance with the market over aligned observations divided by the
// variance of the whole market series.
func Beta(r, market timeseries.Series) float64 {
	mv := stats.Variance(market.Values)
	if mv == 0 {
		return 0
	}
	x, y := timeseries.Align(r, market)
	return stats.Covariance(x, y) / mv
}

// Alpha is the CAPM excess annual return in percent.
func Alpha(r, market timeseries.Series, rf float64) float64 {
	expected := rf + Beta(r, market)*(AnnualReturn(market.Values)/100-rf)
	return (AnnualReturn(r.Values)/100 - expected) * 100
}

func Treynor(r, market timeseries.Series, rf float64) float64 {
	b := Beta(r, market)
	if b == 0 {
		return 0
	}
	return (AnnualReturn(r.Values)/100 - rf) / b
}

// RollingSharpe is the trailing-window annualised Sharpe (no risk-free).
// Points without a full window or with zero std are omitted.
func RollingSharpe(r timeseries.Series, window int) timeseries.Series {
	roll := stats.RollingMeanStd(r.Values, window)
	var out timeseries.Series
	for i := range r.Values {
		if !roll.OK[i] || roll.Std[i] == 0 {
			continue
		}
		out.Index = append(out.Index, r.Index[i])
		out.Values = append(out.Values, roll.Mean[i]*TradingDays/(roll.Std[i]*sqrtYear))
	}
	return out
}

func below(r []float64, threshold float64) []float64 {
	var out []float64
	for _, x := range r {
		if x < threshold {
			out = append(out, x)
		}
	}
	return out
}
