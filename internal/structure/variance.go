package structure

import (
	"math"

	"portfolioLab/internal/stats"
)

var (
	DefaultScales = []int{1, 5, 10, 20, 60}
	DefaultLags   = []int{2, 5, 10, 20}
)

// ScaleRow is one line of the multi-scale variance table.
type ScaleRow struct {
	Scale       int
	Variance    float64
	VarRatio    float64
	Theoretical float64
	Deviation   float64
}

// MultiScaleVariance aggregates returns into disjoint blocks of each scale and compares
// the block variance with the daily one. Scales that do not fit at least two full
// blocks are omitted. A nil scales slice uses DefaultScales.
func MultiScaleVariance(returns []float64, scales []int) []ScaleRow {
	if scales == nil {
		scales = DefaultScales
	}
	n := len(returns)
	base := stats.Variance(returns)
	var rows []ScaleRow
	for _, s := range scales {
		if s < 1 || s >= n {
			continue
		}
		var agg []float64
		for i := 0; i+s <= n; i += s {
			agg = append(agg, stats.Sum(returns[i:i+s]))
		}
		if len(agg) < 2 {
			continue
		}
		v := stats.Variance(agg)
		ratio := 0.0
		if base > 0 {
			ratio = v / base
		}
		rows = append(rows, ScaleRow{
			Scale:       s,
			Variance:    v,
			VarRatio:    ratio,
			Theoretical: float64(s),
			Deviation:   ratio / float64(s),
		})
	}
	return rows
}

// VarianceRatioRow is one lag of the variance ratio test.
type VarianceRatioRow struct {
	Lag            int
	Ratio          float64
	Z              float64
	Interpretation string
}

const (
	Momentum      = "Momentum"
	MeanReversion = "Mean Reversion"
	Random        = "Random Walk"
)

// VarianceRatioTest is a simplified Lo-MacKinlay test with the homoscedastic standard
// error. Lags below 2 or not shorter than the series are omitted, as are lags yielding
// fewer than two blocks. A nil lags slice uses DefaultLags.
func VarianceRatioTest(returns []float64, lags []int) []VarianceRatioRow {
	if lags == nil {
		lags = DefaultLags
	}
	n := len(returns)
	base := stats.Variance(returns)
	var rows []VarianceRatioRow
	for _, q := range lags {
		if q < 2 || q >= n {
			continue
		}
		var agg []float64
		for i := 0; i < n-q; i += q {
			agg = append(agg, stats.Sum(returns[i:i+q]))
		}
		if len(agg) < 2 {
			continue
		}
		vr := 1.0
		if base > 0 {
			vr = stats.PopVariance(agg) / (float64(q) * base)
		}
		se := math.Sqrt(2 * float64(q-1) / (3 * float64(q) * float64(n)))
		z := 0.0
		if se > 0 {
			z = (vr - 1) / se
		}
		rows = append(rows, VarianceRatioRow{Lag: q, Ratio: vr, Z: z, Interpretation: interpret(vr)})
	}
	return rows
}

func interpret(vr float64) string {
	switch {
	case vr > 1.2:
		return Momentum
	case vr < 0.8:
		return MeanReversion
	default:
		return Random
	}
}
