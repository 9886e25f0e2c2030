package portfolio

import (
	"errors"

	"portfolioLab/internal/timeseries"
)

const (
	TradingDays     = 252
	DefaultRiskFree = 0.02
)

// ErrWeightMismatch is returned when a weight names an asset the price table does not carry.
var ErrWeightMismatch = errors.New("weight does not match any asset")

// WeightVector maps asset symbol to weight.
type WeightVector map[string]float64

// Options tunes a single Analyze call. The zero value means buy-and-hold,
// no benchmark and the default risk-free rate.
type Options struct {
	Rebalancing Rebalancing
	Benchmark   *timeseries.Series // benchmark simple returns
	RiskFree    *float64           // nil means DefaultRiskFree; 0 is a valid rate
}

// RiskFreeRate builds the Options.RiskFree value.
func RiskFreeRate(rf float64) *float64 { return &rf }

func (o Options) riskFree() float64 {
	if o.RiskFree == nil {
		return DefaultRiskFree
	}
	return *o.RiskFree
}

// Metrics is the base catalogue computed for every portfolio. Values are rounded to 2 decimals.
type Metrics struct {
	AnnualReturn         float64
	Volatility           float64
	DownsideDeviation    float64
	Sharpe               float64
	Sortino              Ratio
	Calmar               float64
	InformationRatio     float64
	MaxDrawdown          float64
	CurrentDrawdown      float64
	UlcerIndex           float64
	RecoveryFactor       float64
	VaR95                float64
	CVaR95               float64
	VaR99                float64
	Skewness             float64
	Kurtosis             float64
	TailRatio            float64
	WinRate              float64
	ProfitFactor         Ratio
	DiversificationRatio float64
	EffectiveAssets      float64
}

// BenchmarkMetrics is only computed when a non-empty benchmark is supplied.
type BenchmarkMetrics struct {
	Beta    float64
	Alpha   float64
	Treynor float64
}

type Catalogue struct {
	Metrics
	Benchmark *BenchmarkMetrics
}

// AssetMetrics is the reduced catalogue reported per constituent.
type AssetMetrics struct {
	Return      float64
	Volatility  float64
	Sharpe      float64
	Sortino     Ratio
	MaxDrawdown float64 // on raw prices
	VaR95       float64
	Weight      float64 // percent, 1 decimal
}

// Matrix is a square asset-by-asset table.
type Matrix struct {
	Assets []string
	Values [][]float64
}

// At returns the cell for the asset pair, or 0 when either is unknown.
func (m Matrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, s := range m.Assets {
		if s == a {
			i = k
		}
		if s == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0
	}
	return m.Values[i][j]
}

// Analysis is the full result of one Analyze call.
type Analysis struct {
	Portfolio   Catalogue
	Assets      map[string]AssetMetrics
	AssetOrder  []string
	Correlation Matrix
	Value       timeseries.Series
	Returns     timeseries.Series
	Weights     WeightVector
}
