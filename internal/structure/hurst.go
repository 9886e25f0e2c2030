// Package structure estimates long-memory and regime properties of return series.
package structure

import "math"

// Hurst estimates the Hurst exponent by comparing the second moment of the returns with
// the second moment of the pairwise-aggregated returns: H = ½·log2(M2'/M2), clipped to
// [0,1]. Short or degenerate series give 0.5.
func Hurst(returns []float64) float64 {
	n := len(returns)
	if n < 4 {
		return 0.5
	}
	m2 := 0.0
	for _, r := range returns {
		m2 += r * r
	}
	pairs := n / 2
	if pairs < 2 {
		return 0.5
	}
	m2Half := 0.0
	for i := 0; i < pairs; i++ {
		s := returns[2*i] + returns[2*i+1]
		m2Half += s * s
	}
	if m2 <= 0 || m2Half <= 0 {
		return 0.5
	}
	h := 0.5 * math.Log2(m2Half/m2)
	return math.Max(0, math.Min(1, h))
}

// Persistence classifies a Hurst exponent.
type Persistence string

const (
	Persistent     Persistence = "Persistent"
	AntiPersistent Persistence = "Anti-persistent"
	RandomWalk     Persistence = "Random Walk"
)

func Classify(h float64) Persistence {
	switch {
	case h > 0.55:
		return Persistent
	case h < 0.45:
		return AntiPersistent
	default:
		return RandomWalk
	}
}

// DifferencingAdvice says how much differencing a series with exponent h needs.
func DifferencingAdvice(h float64) string {
	switch Classify(h) {
	case Persistent:
		return "Series shows persistence. Consider fractional differencing with d < 1"
	case AntiPersistent:
		return "Series shows anti-persistence. Already stationary"
	default:
		return "Series close to random walk. Standard differencing OK"
	}
}
