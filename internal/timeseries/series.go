package timeseries

import (
	"errors"
	"math"
	"time"
)

// ErrEmptyInput is returned when a series or price table carries no observations.
var ErrEmptyInput = errors.New("empty input")

// Series is an ordered sequence of observations on a strictly increasing time index.
type Series struct {
	Index  []time.Time
	Values []float64
}

// NewSeries pairs an index with values. Both slices are owned by the returned Series.
func NewSeries(index []time.Time, values []float64) Series {
	return Series{Index: index, Values: values}
}

func (s Series) Len() int { return len(s.Values) }

// Last returns the final observation, or NaN for an empty series.
func (s Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// SimpleReturns computes r[t] = p[t]/p[t-1] - 1. The first observation is dropped.
func SimpleReturns(prices Series) Series {
	if prices.Len() < 2 {
		return Series{}
	}
	out := Series{
		Index:  make([]time.Time, prices.Len()-1),
		Values: make([]float64, prices.Len()-1),
	}
	for i := 1; i < prices.Len(); i++ {
		out.Index[i-1] = prices.Index[i]
		out.Values[i-1] = prices.Values[i]/prices.Values[i-1] - 1
	}
	return out
}

// LogReturns computes ln(p[t]/p[t-1]). The first observation is dropped.
func LogReturns(prices Series) Series {
	if prices.Len() < 2 {
		return Series{}
	}
	out := Series{
		Index:  make([]time.Time, prices.Len()-1),
		Values: make([]float64, prices.Len()-1),
	}
	for i := 1; i < prices.Len(); i++ {
		out.Index[i-1] = prices.Index[i]
		out.Values[i-1] = math.Log(prices.Values[i] / prices.Values[i-1])
	}
	return out
}

// Align inner-joins two series on their timestamps and returns the paired values
// in index order.
func Align(a, b Series) ([]float64, []float64) {
	pos := make(map[int64]int, b.Len())
	for i, t := range b.Index {
		pos[t.UnixNano()] = i
	}
	var x, y []float64
	for i, t := range a.Index {
		if j, ok := pos[t.UnixNano()]; ok {
			x = append(x, a.Values[i])
			y = append(y, b.Values[j])
		}
	}
	return x, y
}
