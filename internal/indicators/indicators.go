// Package indicators computes the technical indicators used by the backtest strategies.
// Values that need more history than is available are NaN.
package indicators

import (
	"math"

	"portfolioLab/internal/stats"
)

// SMA is the simple moving average over period observations.
func SMA(x []float64, period int) []float64 {
	out := nanSlice(len(x))
	if period < 1 {
		return out
	}
	sum := 0.0
	for i, v := range x {
		sum += v
		if i >= period {
			sum -= x[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EWM is the recursive exponential moving average with alpha = 2/(span+1),
// seeded with the first observation.
func EWM(x []float64, span int) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	alpha := 2 / (float64(span) + 1)
	out[0] = x[0]
	for i := 1; i < len(x); i++ {
		out[i] = alpha*x[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal EMA.
func MACD(closes []float64, fast, slow, signal int) (line, sig []float64) {
	f := EWM(closes, fast)
	s := EWM(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = f[i] - s[i]
	}
	return line, EWM(line, signal)
}

// RSI uses simple rolling means of gains and losses. The first change counts as zero.
// A window with no losses is 100 unless it also has no gains, which is NaN.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}
	g := SMA(gains, period)
	l := SMA(losses, period)
	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(g[i]) {
			continue
		}
		switch {
		case l[i] == 0 && g[i] == 0:
		case l[i] == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g[i]/l[i])
		}
	}
	return out
}

// LinRegForecast fits a line to the previous lookback closes at x=0..lookback-1 and
// extrapolates it to x=lookback. The first lookback points are NaN.
func LinRegForecast(closes []float64, lookback int) []float64 {
	out := nanSlice(len(closes))
	if lookback < 2 {
		return out
	}
	xs := make([]float64, lookback)
	for i := range xs {
		xs[i] = float64(i)
	}
	for i := lookback; i < len(closes); i++ {
		a, b := stats.LinearRegression(xs, closes[i-lookback:i])
		out[i] = a + b*float64(lookback)
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
