package backtest

import (
	"portfolioLab/internal/indicators"
)

const (
	macdFast, macdSlow, macdSignalSpan = 12, 26, 9
	breakoutK                          = 0.5
	trendPeriod                        = 50
	crossFast, crossSlow               = 50, 200
	rsiPeriod, rsiOversold             = 14, 30
	linregLookback                     = 20
)

func boolSignal(n int, f func(i int) bool) []float64 {
	out := make([]float64, n)
	for i := range out {
		if f(i) {
			out[i] = 1
		}
	}
	return out
}

func macdSignal(b Bars) []float64 {
	line, sig := indicators.MACD(b.Close, macdFast, macdSlow, macdSignalSpan)
	return boolSignal(b.Len(), func(i int) bool { return line[i] > sig[i] })
}

// endOfMonthSignal is long on the last three calendar days present in each month.
func endOfMonthSignal(b Bars) []float64 {
	type ym struct{ y, m int }
	last := map[ym]int{}
	for _, ts := range b.Index {
		k := ym{ts.Year(), int(ts.Month())}
		if ts.Day() > last[k] {
			last[k] = ts.Day()
		}
	}
	return boolSignal(b.Len(), func(i int) bool {
		ts := b.Index[i]
		return ts.Day() >= last[ym{ts.Year(), int(ts.Month())}]-2
	})
}

// breakoutSignal fires when the high clears the previous high by k times the previous range.
func breakoutSignal(b Bars) []float64 {
	return boolSignal(b.Len(), func(i int) bool {
		if i == 0 {
			return false
		}
		level := b.High[i-1] + breakoutK*(b.High[i-1]-b.Low[i-1])
		return b.High[i] > level
	})
}

func trendSignal(b Bars) []float64 {
	ma := indicators.SMA(b.Close, trendPeriod)
	return boolSignal(b.Len(), func(i int) bool { return b.Close[i] > ma[i] })
}

func goldenCrossSignal(b Bars) []float64 {
	fast := indicators.SMA(b.Close, crossFast)
	slow := indicators.SMA(b.Close, crossSlow)
	return boolSignal(b.Len(), func(i int) bool { return fast[i] > slow[i] })
}

func rsiSignal(b Bars) []float64 {
	rsi := indicators.RSI(b.Close, rsiPeriod)
	return boolSignal(b.Len(), func(i int) bool { return rsi[i] < rsiOversold })
}

func linregSignal(b Bars) []float64 {
	pred := indicators.LinRegForecast(b.Close, linregLookback)
	return boolSignal(b.Len(), func(i int) bool { return pred[i] > b.Close[i] })
}
