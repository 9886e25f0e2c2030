package portfolio

import (
	"fmt"
	"strings"

	"portfolioLab/internal/timeseries"
)

// Rebalancing is the policy for resetting drifted weights back to target.
type Rebalancing string

const (
	Never     Rebalancing = "never"
	Monthly   Rebalancing = "monthly"
	Quarterly Rebalancing = "quarterly"
	Yearly    Rebalancing = "yearly"
)

// ParseRebalancing maps user text to a policy; anything unrecognised is Never.
func ParseRebalancing(s string) Rebalancing {
	switch Rebalancing(strings.ToLower(strings.TrimSpace(s))) {
	case Monthly, "m", "month":
		return Monthly
	case Quarterly, "q", "quarter":
		return Quarterly
	case Yearly, "y", "year", "annual":
		return Yearly
	default:
		return Never
	}
}

// intervalMonths is the reset interval. Unknown policies get an interval no
// calendar gap can reach, which never resets.
func (r Rebalancing) intervalMonths() int {
	switch r {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case Yearly:
		return 12
	default:
		return 999
	}
}

// Value builds the indexed portfolio value series.
//
// Never (and the empty policy) weights each asset's base-100 price and is indexed like
// the prices. Periodic policies walk the return rows with drifting weights, resetting to
// target within the first five days of every interval month; that series is indexed by
// the returns and so is one row shorter.
func Value(prices timeseries.PriceTable, weights WeightVector, reb Rebalancing) (timeseries.Series, error) {
	if prices.Rows() == 0 || len(prices.Assets) == 0 {
		return timeseries.Series{}, fmt.Errorf("portfolio value: %w", timeseries.ErrEmptyInput)
	}
	for _, a := range weights.Keys() {
		if _, ok := prices.Prices[a]; !ok {
			return timeseries.Series{}, fmt.Errorf("portfolio value: %s: %w", a, ErrWeightMismatch)
		}
	}
	if reb == "" || reb == Never {
		return buyAndHold(prices, weights), nil
	}
	return rebalanced(prices, weights, reb.intervalMonths()), nil
}

func buyAndHold(prices timeseries.PriceTable, weights WeightVector) timeseries.Series {
	values := make([]float64, prices.Rows())
	for _, a := range weights.Keys() {
		col := prices.Prices[a]
		base := col[0]
		w := weights[a]
		for i, p := range col {
			values[i] += p / base * 100 * w
		}
	}
	return timeseries.NewSeries(prices.Index, values)
}

func rebalanced(prices timeseries.PriceTable, target WeightVector, months int) timeseries.Series {
	returns := prices.Returns()
	keys := target.Keys()

	current := make(WeightVector, len(target))
	for k, v := range target {
		current[k] = v
	}
	lastMonth := int(prices.Index[0].Month())
	value := 100.0
	out := make([]float64, returns.Rows())

	for i, ts := range returns.Index {
		month := int(ts.Month())
		if mod(month-lastMonth, months) == 0 && ts.Day() <= 5 {
			for k, v := range target {
				current[k] = v
			}
			lastMonth = month
		}

		periodReturn := 0.0
		for _, a := range keys {
			if returns.Has(a) {
				periodReturn += current[a] * returns.Returns[a][i]
			}
		}
		value *= 1 + periodReturn
		out[i] = value

		total := 0.0
		for _, a := range keys {
			if returns.Has(a) {
				current[a] *= 1 + returns.Returns[a][i]
			}
			total += current[a]
		}
		if total > 0 {
			for _, a := range keys {
				current[a] /= total
			}
		}
	}
	return timeseries.NewSeries(returns.Index, out)
}

// mod is the non-negative remainder.
func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// WeightedReturns is Σ w·r over the weighted assets for each return row.
func WeightedReturns(returns timeseries.ReturnTable, weights WeightVector) timeseries.Series {
	out := make([]float64, returns.Rows())
	for _, a := range weights.Keys() {
		if !returns.Has(a) {
			continue
		}
		w := weights[a]
		for i, r := range returns.Returns[a] {
			out[i] += w * r
		}
	}
	return timeseries.NewSeries(returns.Index, out)
}
