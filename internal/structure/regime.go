package structure

import (
	"time"

	"portfolioLab/internal/stats"
	"portfolioLab/internal/timeseries"
)

type Regime string

const (
	Bull     Regime = "Bull"
	Bear     Regime = "Bear"
	HighVol  Regime = "High Vol"
	Sideways Regime = "Sideways"
	Unknown  Regime = "Unknown"
)

const (
	DefaultRegimeWindow = 60
	trendThreshold      = 0.0005
	volMultiplier       = 1.5
)

type RegimePoint struct {
	Time   time.Time
	Regime Regime
}

// DetectRegimes labels each return date of a price series from its trailing mean and
// std. The volatility threshold is the median of all defined trailing stds.
func DetectRegimes(prices timeseries.Series, window int) []RegimePoint {
	returns := timeseries.SimpleReturns(prices)
	roll := stats.RollingMeanStd(returns.Values, window)

	var defined []float64
	for i, ok := range roll.OK {
		if ok {
			defined = append(defined, roll.Std[i])
		}
	}
	threshold := stats.Median(defined)

	out := make([]RegimePoint, returns.Len())
	for i, ts := range returns.Index {
		out[i] = RegimePoint{Time: ts, Regime: label(roll, i, threshold)}
	}
	return out
}

func label(roll stats.Rolling, i int, threshold float64) Regime {
	if !roll.OK[i] {
		return Unknown
	}
	switch mean, std := roll.Mean[i], roll.Std[i]; {
	case std > threshold*volMultiplier:
		return HighVol
	case mean > trendThreshold:
		return Bull
	case mean < -trendThreshold:
		return Bear
	default:
		return Sideways
	}
}

// RegimeCounts tallies labels, Unknown included.
func RegimeCounts(points []RegimePoint) map[Regime]int {
	out := make(map[Regime]int)
	for _, p := range points {
		out[p.Regime]++
	}
	return out
}

// Current returns the latest label, or Unknown for no points.
func Current(points []RegimePoint) Regime {
	if len(points) == 0 {
		return Unknown
	}
	return points[len(points)-1].Regime
}
