// Package stats wraps the gonum kernels used by the analytics packages.
// Every function returns 0 instead of NaN when the input is too short or has no variance.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

func Sum(x []float64) float64 { return floats.Sum(x) }

// Variance is the sample variance (ddof=1).
func Variance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil)
}

// PopVariance is the population variance (ddof=0).
func PopVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.PopVariance(x, nil)
}

// StdDev is the sample standard deviation (ddof=1).
func StdDev(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

// Covariance is the sample covariance of two equal-length slices.
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation is the Pearson correlation; constant inputs give 0.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if Variance(x) == 0 || Variance(y) == 0 {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

// Skew is the bias-corrected sample skewness (G1).
func Skew(x []float64) float64 {
	if len(x) < 3 || Variance(x) == 0 {
		return 0
	}
	return stat.Skew(x, nil)
}

// ExKurtosis is the bias-corrected excess kurtosis (G2).
func ExKurtosis(x []float64) float64 {
	if len(x) < 4 || Variance(x) == 0 {
		return 0
	}
	return stat.ExKurtosis(x, nil)
}

// Percentile returns the p-th percentile (0..100) with linear interpolation
// between closest ranks.
func Percentile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}
	vals := make([]float64, len(x))
	copy(vals, x)
	sort.Float64s(vals)
	q := p / 100
	if q <= 0 {
		return vals[0]
	}
	if q >= 1 {
		return vals[len(vals)-1]
	}
	pos := q * float64(len(vals)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(vals) {
		return vals[lo]
	}
	frac := pos - float64(lo)
	return vals[lo]*(1-frac) + vals[hi]*frac
}

func Median(x []float64) float64 { return Percentile(x, 50) }

// LinearRegression fits y = alpha + beta*x by ordinary least squares.
func LinearRegression(x, y []float64) (alpha, beta float64) {
	if len(x) < 2 || len(x) != len(y) || Variance(x) == 0 {
		return Mean(y), 0
	}
	return stat.LinearRegression(x, y, nil, false)
}

// Rolling holds trailing-window statistics; OK[i] is false during warm-up.
type Rolling struct {
	Mean []float64
	Std  []float64
	OK   []bool
}

// RollingMeanStd computes the trailing mean and sample std over window observations.
// A point is defined once window observations are available and window >= 2.
func RollingMeanStd(x []float64, window int) Rolling {
	r := Rolling{
		Mean: make([]float64, len(x)),
		Std:  make([]float64, len(x)),
		OK:   make([]bool, len(x)),
	}
	if window < 2 {
		return r
	}
	for i := window - 1; i < len(x); i++ {
		m, s := stat.MeanStdDev(x[i-window+1:i+1], nil)
		r.Mean[i] = m
		r.Std[i] = s
		r.OK[i] = true
	}
	return r
}
