package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 3.0, out[3], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestEWM_AdjustFalse(t *testing.T) {
	// span 3 -> alpha 0.5
	out := EWM([]float64{2, 4, 8}, 3)
	assert.Equal(t, []float64{2, 3, 5.5}, out)
	assert.Empty(t, EWM(nil, 3))
}

func TestMACD_ConstantIsFlat(t *testing.T) {
	line, sig := MACD([]float64{10, 10, 10, 10}, 12, 26, 9)
	for i := range line {
		assert.Equal(t, 0.0, line[i])
		assert.Equal(t, 0.0, sig[i])
	}
}

func TestRSI(t *testing.T) {
	up := RSI([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(up[1]))
	assert.Equal(t, 100.0, up[2])

	down := RSI([]float64{5, 4, 3, 2}, 2)
	assert.Equal(t, 0.0, down[1])

	flat := RSI([]float64{3, 3, 3, 3}, 2)
	assert.True(t, math.IsNaN(flat[3]))

	// gains 2, losses 1 over the window -> rs 2 -> 66.67
	mixed := RSI([]float64{10, 12, 11}, 2)
	assert.InDelta(t, 100-100/3.0, mixed[2], 1e-9)
}

func TestLinRegForecast(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	out := LinRegForecast(closes, 3)
	assert.True(t, math.IsNaN(out[2]))
	// fit on 1,2,3 extrapolates to 4
	assert.InDelta(t, 4.0, out[3], 1e-9)
	assert.InDelta(t, 6.0, out[5], 1e-9)
}
