package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int) []time.Time {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestSimpleReturns_DropsFirstObservation(t *testing.T) {
	s := NewSeries(days(4), []float64{100, 102, 104, 103})
	r := SimpleReturns(s)

	require.Equal(t, 3, r.Len())
	assert.Equal(t, s.Index[1], r.Index[0])
	assert.InDelta(t, 0.02, r.Values[0], 1e-12)
	assert.InDelta(t, 104.0/102-1, r.Values[1], 1e-12)
	assert.InDelta(t, 103.0/104-1, r.Values[2], 1e-12)
}

func TestLogReturns(t *testing.T) {
	s := NewSeries(days(3), []float64{100, 110, 99})
	r := LogReturns(s)

	require.Equal(t, 2, r.Len())
	assert.InDelta(t, math.Log(1.1), r.Values[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), r.Values[1], 1e-12)
}

func TestReturns_ShortSeries(t *testing.T) {
	assert.Equal(t, 0, SimpleReturns(NewSeries(days(1), []float64{5})).Len())
	assert.Equal(t, 0, LogReturns(Series{}).Len())
}

func TestAlign_InnerJoin(t *testing.T) {
	idx := days(5)
	a := NewSeries(idx[:4], []float64{1, 2, 3, 4})
	b := NewSeries([]time.Time{idx[1], idx[3], idx[4]}, []float64{20, 40, 50})

	x, y := Align(a, b)
	assert.Equal(t, []float64{2, 4}, x)
	assert.Equal(t, []float64{20, 40}, y)
}

func TestNewPriceTable_Validation(t *testing.T) {
	idx := days(3)

	_, err := NewPriceTable(nil, []string{"A"}, nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = NewPriceTable(idx, nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = NewPriceTable(idx, []string{"A"}, map[string][]float64{"A": {1, 2}})
	assert.Error(t, err)

	_, err = NewPriceTable(idx, []string{"A"}, map[string][]float64{"A": {1, math.NaN(), 2}})
	assert.Error(t, err)

	_, err = NewPriceTable([]time.Time{idx[1], idx[0], idx[2]}, []string{"A"}, map[string][]float64{"A": {1, 2, 3}})
	assert.Error(t, err)

	tbl, err := NewPriceTable(idx, []string{"A"}, map[string][]float64{"A": {1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Rows())
}

func TestPriceTable_Returns(t *testing.T) {
	tbl, err := NewPriceTable(days(3), []string{"A", "B"}, map[string][]float64{
		"A": {100, 110, 121},
		"B": {50, 50, 25},
	})
	require.NoError(t, err)

	rt := tbl.Returns()
	require.Equal(t, 2, rt.Rows())
	assert.True(t, rt.Has("A"))
	assert.False(t, rt.Has("C"))
	assert.InDelta(t, 0.1, rt.Returns["A"][1], 1e-12)
	assert.InDelta(t, -0.5, rt.Returns["B"][1], 1e-12)
}

func TestIntersect_DropsMissingRows(t *testing.T) {
	idx := days(4)
	series := map[string]Series{
		"AAPL": NewSeries(idx, []float64{1, 2, 3, 4}),
		"BTC":  NewSeries([]time.Time{idx[0], idx[2], idx[3]}, []float64{10, 30, 40}),
	}

	tbl, err := Intersect([]string{"AAPL", "BTC"}, series)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Rows())
	assert.Equal(t, []float64{1, 3, 4}, tbl.Prices["AAPL"])
	assert.Equal(t, []float64{10, 30, 40}, tbl.Prices["BTC"])
	assert.Equal(t, []string{"AAPL", "BTC"}, tbl.Assets)
}

func TestIntersect_NoOverlap(t *testing.T) {
	idx := days(4)
	series := map[string]Series{
		"A": NewSeries(idx[:2], []float64{1, 2}),
		"B": NewSeries(idx[2:], []float64{1, 2}),
	}
	_, err := Intersect([]string{"A", "B"}, series)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}
