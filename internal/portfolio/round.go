package portfolio

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to 2 decimals. NaN and Inf pass through.
func Round2(v float64) float64 { return roundTo(v, 2) }

// Round1 rounds half away from zero to 1 decimal.
func Round1(v float64) float64 { return roundTo(v, 1) }

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func (m Metrics) rounded() Metrics {
	return Metrics{
		AnnualReturn:         Round2(m.AnnualReturn),
		Volatility:           Round2(m.Volatility),
		DownsideDeviation:    Round2(m.DownsideDeviation),
		Sharpe:               Round2(m.Sharpe),
		Sortino:              m.Sortino.round(),
		Calmar:               Round2(m.Calmar),
		InformationRatio:     Round2(m.InformationRatio),
		MaxDrawdown:          Round2(m.MaxDrawdown),
		CurrentDrawdown:      Round2(m.CurrentDrawdown),
		UlcerIndex:           Round2(m.UlcerIndex),
		RecoveryFactor:       Round2(m.RecoveryFactor),
		VaR95:                Round2(m.VaR95),
		CVaR95:               Round2(m.CVaR95),
		VaR99:                Round2(m.VaR99),
		Skewness:             Round2(m.Skewness),
		Kurtosis:             Round2(m.Kurtosis),
		TailRatio:            Round2(m.TailRatio),
		WinRate:              Round2(m.WinRate),
		ProfitFactor:         m.ProfitFactor.round(),
		DiversificationRatio: Round2(m.DiversificationRatio),
		EffectiveAssets:      Round2(m.EffectiveAssets),
	}
}

func (b BenchmarkMetrics) rounded() BenchmarkMetrics {
	return BenchmarkMetrics{Beta: Round2(b.Beta), Alpha: Round2(b.Alpha), Treynor: Round2(b.Treynor)}
}

func (a AssetMetrics) rounded() AssetMetrics {
	return AssetMetrics{
		Return:      Round2(a.Return),
		Volatility:  Round2(a.Volatility),
		Sharpe:      Round2(a.Sharpe),
		Sortino:     a.Sortino.round(),
		MaxDrawdown: Round2(a.MaxDrawdown),
		VaR95:       Round2(a.VaR95),
		Weight:      Round1(a.Weight),
	}
}
