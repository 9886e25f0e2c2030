package portfolio

import (
	"fmt"

	"portfolioLab/internal/stats"
	"portfolioLab/internal/timeseries"
)

// Analyze values the portfolio and computes its catalogue, the per-asset catalogues and
// the return correlation matrix. It either returns a complete Analysis or an error.
func Analyze(prices timeseries.PriceTable, weights WeightVector, opts Options) (*Analysis, error) {
	if prices.Rows() < 2 || len(prices.Assets) == 0 {
		return nil, fmt.Errorf("analyze: need at least two price rows: %w", timeseries.ErrEmptyInput)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("analyze: no weights: %w", timeseries.ErrEmptyInput)
	}
	weights = NormalizeWeights(weights)
	rf := opts.riskFree()

	returns := prices.Returns()
	portReturns := WeightedReturns(returns, weights)
	value, err := Value(prices, weights, opts.Rebalancing)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	r := portReturns.Values
	v := value.Values
	self := portReturns
	if opts.Benchmark != nil {
		self = *opts.Benchmark
	}
	m := Metrics{
		AnnualReturn:         AnnualReturn(r),
		Volatility:           Volatility(r),
		DownsideDeviation:    DownsideDeviation(r),
		Sharpe:               Sharpe(r, rf),
		Sortino:              Sortino(r, rf, 0),
		Calmar:               Calmar(r, v),
		InformationRatio:     InformationRatio(portReturns, self),
		MaxDrawdown:          MaxDrawdown(v),
		CurrentDrawdown:      CurrentDrawdown(v),
		UlcerIndex:           UlcerIndex(v),
		RecoveryFactor:       RecoveryFactor(v),
		VaR95:                ValueAtRisk(r, 0.95),
		CVaR95:               ConditionalVaR(r, 0.95),
		VaR99:                ValueAtRisk(r, 0.99),
		Skewness:             stats.Skew(r),
		Kurtosis:             stats.ExKurtosis(r),
		TailRatio:            TailRatio(r),
		WinRate:              WinRate(r),
		ProfitFactor:         ProfitFactor(r),
		DiversificationRatio: DiversificationRatio(returns, weights),
		EffectiveAssets:      EffectiveAssets(weights),
	}
	cat := Catalogue{Metrics: m.rounded()}
	if b := opts.Benchmark; b != nil && b.Len() > 0 {
		bm := BenchmarkMetrics{
			Beta:    Beta(portReturns, *b),
			Alpha:   Alpha(portReturns, *b, rf),
			Treynor: Treynor(portReturns, *b, rf),
		}.rounded()
		cat.Benchmark = &bm
	}

	assets := make(map[string]AssetMetrics, len(prices.Assets))
	for _, a := range prices.Assets {
		ar := returns.Returns[a]
		assets[a] = AssetMetrics{
			Return:      AnnualReturn(ar),
			Volatility:  Volatility(ar),
			Sharpe:      Sharpe(ar, rf),
			Sortino:     Sortino(ar, rf, 0),
			MaxDrawdown: MaxDrawdown(prices.Prices[a]),
			VaR95:       ValueAtRisk(ar, 0.95),
			Weight:      weights[a] * 100,
		}.rounded()
	}

	return &Analysis{
		Portfolio:   cat,
		Assets:      assets,
		AssetOrder:  prices.Assets,
		Correlation: CorrelationMatrix(returns),
		Value:       value,
		Returns:     portReturns,
		Weights:     weights,
	}, nil
}

// CorrelationMatrix is the Pearson correlation of daily returns for every asset pair.
func CorrelationMatrix(returns timeseries.ReturnTable) Matrix {
	n := len(returns.Assets)
	m := Matrix{Assets: returns.Assets, Values: make([][]float64, n)}
	for i, a := range returns.Assets {
		m.Values[i] = make([]float64, n)
		for j, b := range returns.Assets {
			if i == j && stats.Variance(returns.Returns[a]) > 0 {
				m.Values[i][j] = 1
				continue
			}
			m.Values[i][j] = stats.Correlation(returns.Returns[a], returns.Returns[b])
		}
	}
	return m
}

// Candidate is one named portfolio for Compare.
type Candidate struct {
	Name    string
	Prices  timeseries.PriceTable
	Weights WeightVector
	Options Options
}

type NamedCatalogue struct {
	Name string
	Catalogue
}

// Compare analyzes each candidate in order. Any failure fails the whole comparison.
func Compare(candidates []Candidate) ([]NamedCatalogue, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("compare: %w", timeseries.ErrEmptyInput)
	}
	out := make([]NamedCatalogue, 0, len(candidates))
	for _, c := range candidates {
		a, err := Analyze(c.Prices, c.Weights, c.Options)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", c.Name, err)
		}
		out = append(out, NamedCatalogue{Name: c.Name, Catalogue: a.Portfolio})
	}
	return out, nil
}
