package portfolio

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// EqualWeights gives every asset 1/n.
func EqualWeights(assets []string) WeightVector {
	w := make(WeightVector, len(assets))
	if len(assets) == 0 {
		return w
	}
	each := 1.0 / float64(len(assets))
	for _, a := range assets {
		w[a] = each
	}
	return w
}

// NormalizeWeights rescales weights to sum to 1. An all-zero vector becomes equal
// weights over the same keys. Negative weights are kept as short positions.
func NormalizeWeights(w WeightVector) WeightVector {
	total := 0.0
	for _, k := range w.Keys() {
		total += w[k]
	}
	if total == 0 {
		return EqualWeights(w.Keys())
	}
	out := make(WeightVector, len(w))
	for k, v := range w {
		out[k] = v / total
	}
	return out
}

// Keys returns the asset names in sorted order.
func (w WeightVector) Keys() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseWeights reads a comma-separated list of weights (percent or fractions) in asset order.
// Empty text or "equal" selects equal weights. Unparsable input or a count that does not
// match the assets falls back to equal weights and reports fallback=true.
func ParseWeights(text string, assets []string) (w WeightVector, fallback bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "equal") {
		return EqualWeights(assets), false
	}
	values, err := parseFloats(text)
	if err != nil || len(values) != len(assets) {
		log.Warn().
			Str("component", "portfolio").
			Str("weights", text).
			Int("assets", len(assets)).
			Msg("invalid weights, falling back to equal weights")
		return EqualWeights(assets), true
	}
	raw := make(WeightVector, len(assets))
	for i, a := range assets {
		raw[a] += values[i]
	}
	return NormalizeWeights(raw), false
}

func parseFloats(text string) ([]float64, error) {
	parts := strings.Split(text, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "%")), 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("weight %q is not finite", p)
		}
		out = append(out, v)
	}
	return out, nil
}
