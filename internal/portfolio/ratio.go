package portfolio

import (
	"fmt"
	"math"
)

// Ratio is a ratio that may be unbounded (no losses, no downside).
// An unbounded ratio compares greater than every finite one.
type Ratio struct {
	Value     float64
	Unbounded bool
}

func Finite(v float64) Ratio { return Ratio{Value: v} }

func Unbounded() Ratio { return Ratio{Unbounded: true} }

// Less reports whether r orders strictly before o.
func (r Ratio) Less(o Ratio) bool {
	switch {
	case r.Unbounded:
		return false
	case o.Unbounded:
		return true
	default:
		return r.Value < o.Value
	}
}

// Float64 returns +Inf for an unbounded ratio.
func (r Ratio) Float64() float64 {
	if r.Unbounded {
		return math.Inf(1)
	}
	return r.Value
}

func (r Ratio) String() string {
	if r.Unbounded {
		return "∞"
	}
	return fmt.Sprintf("%.2f", r.Value)
}

func (r Ratio) round() Ratio {
	if r.Unbounded {
		return r
	}
	return Finite(Round2(r.Value))
}
