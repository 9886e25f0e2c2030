package portfolio

import (
	"math"

	"portfolioLab/internal/timeseries"
)

// drawdowns returns (v - running max)/running max for each point.
func drawdowns(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	peak := values[0]
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak != 0 {
			out[i] = (v - peak) / peak
		}
	}
	return out
}

// DrawdownSeries is the per-point drawdown from the running peak, in percent.
func DrawdownSeries(value timeseries.Series) timeseries.Series {
	dd := drawdowns(value.Values)
	for i := range dd {
		dd[i] *= 100
	}
	return timeseries.NewSeries(value.Index, dd)
}

// MaxDrawdown is the deepest decline from a running peak, in percent (<= 0).
func MaxDrawdown(values []float64) float64 {
	worst := 0.0
	for _, d := range drawdowns(values) {
		if d < worst {
			worst = d
		}
	}
	return worst * 100
}

// CurrentDrawdown measures the last point against the global maximum of the series.
func CurrentDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return 0
	}
	return (values[len(values)-1] - peak) / peak * 100
}

func UlcerIndex(values []float64) float64 {
	dd := drawdowns(values)
	if len(dd) == 0 {
		return 0
	}
	sq := 0.0
	for _, d := range dd {
		sq += (d * 100) * (d * 100)
	}
	return math.Sqrt(sq / float64(len(dd)))
}

// RecoveryFactor is the total value change over the absolute max drawdown.
func RecoveryFactor(values []float64) float64 {
	mdd := math.Abs(MaxDrawdown(values))
	if mdd == 0 || len(values) == 0 || values[0] == 0 {
		return 0
	}
	total := (values[len(values)-1]/values[0] - 1) * 100
	return total / mdd
}
