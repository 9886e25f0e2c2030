package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PriceTable holds one price column per asset on a shared, strictly increasing index.
// A table built through NewPriceTable is rectangular and NaN-free.
type PriceTable struct {
	Index  []time.Time
	Assets []string
	Prices map[string][]float64
}

// ReturnTable holds simple returns per asset; it is one row shorter than its PriceTable.
type ReturnTable struct {
	Index   []time.Time
	Assets  []string
	Returns map[string][]float64
}

// NewPriceTable validates and assembles a price table.
func NewPriceTable(index []time.Time, assets []string, prices map[string][]float64) (PriceTable, error) {
	if len(index) == 0 || len(assets) == 0 {
		return PriceTable{}, fmt.Errorf("price table: %w", ErrEmptyInput)
	}
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return PriceTable{}, fmt.Errorf("price table: index not strictly increasing at row %d", i)
		}
	}
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if seen[a] {
			return PriceTable{}, fmt.Errorf("price table: duplicate asset %s", a)
		}
		seen[a] = true
		col, ok := prices[a]
		if !ok {
			return PriceTable{}, fmt.Errorf("price table: no prices for %s", a)
		}
		if len(col) != len(index) {
			return PriceTable{}, fmt.Errorf("price table: %s has %d prices, expected %d", a, len(col), len(index))
		}
		for i, p := range col {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return PriceTable{}, fmt.Errorf("price table: invalid price for %s at row %d: %f", a, i, p)
			}
		}
	}
	return PriceTable{Index: index, Assets: assets, Prices: prices}, nil
}

// Rows returns the number of timestamps in the table.
func (t PriceTable) Rows() int { return len(t.Index) }

// Column returns one asset's prices as a Series.
func (t PriceTable) Column(asset string) Series {
	return Series{Index: t.Index, Values: t.Prices[asset]}
}

// Returns derives the simple-return table; the first row is dropped.
func (t PriceTable) Returns() ReturnTable {
	rt := ReturnTable{Assets: t.Assets, Returns: make(map[string][]float64, len(t.Assets))}
	if t.Rows() < 2 {
		return rt
	}
	rt.Index = t.Index[1:]
	for _, a := range t.Assets {
		rt.Returns[a] = SimpleReturns(t.Column(a)).Values
	}
	return rt
}

// Rows returns the number of return observations.
func (rt ReturnTable) Rows() int { return len(rt.Index) }

// Column returns one asset's returns as a Series.
func (rt ReturnTable) Column(asset string) Series {
	return Series{Index: rt.Index, Values: rt.Returns[asset]}
}

// Has reports whether the table carries a return column for asset.
func (rt ReturnTable) Has(asset string) bool {
	_, ok := rt.Returns[asset]
	return ok
}

// Intersect builds a PriceTable from per-asset series, keeping only timestamps present
// in every series. Assets keep the order given.
func Intersect(assets []string, series map[string]Series) (PriceTable, error) {
	if len(assets) == 0 {
		return PriceTable{}, fmt.Errorf("intersect: %w", ErrEmptyInput)
	}
	count := map[int64]int{}
	values := make(map[string]map[int64]float64, len(assets))
	for _, a := range assets {
		s, ok := series[a]
		if !ok {
			return PriceTable{}, fmt.Errorf("intersect: no series for %s", a)
		}
		mp := make(map[int64]float64, s.Len())
		for i, ts := range s.Index {
			v := s.Values[i]
			if math.IsNaN(v) || v <= 0 {
				continue
			}
			k := ts.Unix()
			if _, dup := mp[k]; !dup {
				count[k]++
			}
			mp[k] = v
		}
		values[a] = mp
	}
	common := make([]int64, 0, len(count))
	for k, c := range count {
		if c == len(assets) {
			common = append(common, k)
		}
	}
	if len(common) == 0 {
		return PriceTable{}, fmt.Errorf("intersect: no overlapping timestamps: %w", ErrEmptyInput)
	}
	sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })

	index := make([]time.Time, len(common))
	for i, k := range common {
		index[i] = time.Unix(k, 0).UTC()
	}
	prices := make(map[string][]float64, len(assets))
	for _, a := range assets {
		col := make([]float64, len(common))
		for i, k := range common {
			col[i] = values[a][k]
		}
		prices[a] = col
	}
	return NewPriceTable(index, assets, prices)
}
