package structure

import (
	"fmt"

	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/timeseries"
)

// Config carries the tunable windows of a Report. Zero values pick the defaults.
type Config struct {
	Scales       []int
	Lags         []int
	RegimeWindow int
}

// AssetHurst pairs an asset with its Hurst exponent.
type AssetHurst struct {
	Asset string
	Hurst float64
}

// Report is the advanced-analytics view of a weighted portfolio.
type Report struct {
	Hurst          float64
	Advice         string
	Assets         []AssetHurst
	Scales         []ScaleRow
	Regimes        []RegimePoint
	VarianceRatios []VarianceRatioRow
}

// Analyze estimates the portfolio and per-asset Hurst exponents, runs the scale and
// variance-ratio diagnostics on the weighted returns and labels regimes on the
// buy-and-hold value series.
func Analyze(prices timeseries.PriceTable, weights portfolio.WeightVector, cfg Config) (*Report, error) {
	if prices.Rows() < 2 || len(weights) == 0 {
		return nil, fmt.Errorf("structure: %w", timeseries.ErrEmptyInput)
	}
	weights = portfolio.NormalizeWeights(weights)
	value, err := portfolio.Value(prices, weights, portfolio.Never)
	if err != nil {
		return nil, fmt.Errorf("structure: %w", err)
	}
	returns := prices.Returns()
	port := portfolio.WeightedReturns(returns, weights).Values

	window := cfg.RegimeWindow
	if window == 0 {
		window = DefaultRegimeWindow
	}
	h := Hurst(port)
	rep := &Report{
		Hurst:          h,
		Advice:         DifferencingAdvice(h),
		Scales:         MultiScaleVariance(port, cfg.Scales),
		Regimes:        DetectRegimes(value, window),
		VarianceRatios: VarianceRatioTest(port, cfg.Lags),
	}
	for _, a := range prices.Assets {
		rep.Assets = append(rep.Assets, AssetHurst{Asset: a, Hurst: Hurst(returns.Returns[a])})
	}
	return rep, nil
}
