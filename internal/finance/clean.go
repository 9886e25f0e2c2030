package finance

// deref returns 0 for null quote cells.
func deref(col []*float64, i int) float64 {
	if i >= len(col) || col[i] == nil {
		return 0
	}
	return *col[i]
}

// cleanBars drops rows whose close is null or non-positive, keeping every column aligned.
// Missing open/high/low cells fall back to the close.
func cleanBars(b dailyBars) dailyBars {
	n := len(b.Time)
	if len(b.Close) < n {
		n = len(b.Close)
	}
	out := dailyBars{Symbol: b.Symbol}
	for i := 0; i < n; i++ {
		c := b.Close[i]
		if c <= 0 {
			continue
		}
		out.Time = append(out.Time, b.Time[i])
		out.Close = append(out.Close, c)
		out.Open = append(out.Open, orClose(b.Open, i, c))
		out.High = append(out.High, orClose(b.High, i, c))
		out.Low = append(out.Low, orClose(b.Low, i, c))
	}
	return out
}

func orClose(col []float64, i int, c float64) float64 {
	if i < len(col) && col[i] > 0 {
		return col[i]
	}
	return c
}

// filterToTargetDays keeps the bars within targetDays of the most recent one.
func filterToTargetDays(b dailyBars, targetDays int) dailyBars {
	if len(b.Time) == 0 || targetDays <= 0 {
		return b
	}
	cutoff := b.Time[len(b.Time)-1] - int64(targetDays*24*3600)
	start := 0
	for i, ts := range b.Time {
		if ts >= cutoff {
			start = i
			break
		}
	}
	return dailyBars{
		Symbol: b.Symbol,
		Time:   b.Time[start:],
		Open:   b.Open[start:],
		High:   b.High[start:],
		Low:    b.Low[start:],
		Close:  b.Close[start:],
	}
}
