// Package backtest runs long/flat single-asset strategies over daily bars.
package backtest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/stats"
	"portfolioLab/internal/timeseries"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

const DefaultCapital = 10000

// Bars is an OHLC daily history on a strictly increasing index.
type Bars struct {
	Index []time.Time
	Open  []float64
	High  []float64
	Low   []float64
	Close []float64
}

func (b Bars) Len() int { return len(b.Close) }

// Validate checks the columns line up and closes are positive.
func (b Bars) Validate() error {
	n := len(b.Close)
	if n == 0 {
		return fmt.Errorf("bars: %w", timeseries.ErrEmptyInput)
	}
	if len(b.Index) != n || len(b.High) != n || len(b.Low) != n {
		return fmt.Errorf("bars: ragged columns (close=%d index=%d high=%d low=%d)", n, len(b.Index), len(b.High), len(b.Low))
	}
	for i, c := range b.Close {
		if math.IsNaN(c) || c <= 0 {
			return fmt.Errorf("bars: invalid close at row %d: %f", i, c)
		}
	}
	return nil
}

type Config struct {
	Capital float64
}

// Metrics summarises a strategy run; values are rounded to 2 decimals.
type Metrics struct {
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	Sharpe           float64
	MaxDrawdown      float64
	WinRate          float64
	ProfitFactor     portfolio.Ratio
	Calmar           float64
}

type Result struct {
	Strategy string
	Label    string
	Signal   []float64 // position held after each bar's close
	Returns  []float64 // strategy return per bar, 0 on the first
	Equity   timeseries.Series
	Metrics  Metrics
}

type strategy struct {
	name   string
	label  string
	signal func(Bars) []float64
}

var strategies = []strategy{
	{"buy_hold", "Buy and Hold", nil},
	{"macd", "MACD Crossover", macdSignal},
	{"end_of_month", "End of Month", endOfMonthSignal},
	{"breakout", "Volatility Breakout", breakoutSignal},
	{"trend", "Trend Following", trendSignal},
	{"golden_cross", "Golden Cross", goldenCrossSignal},
	{"rsi", "RSI Oversold", rsiSignal},
	{"linreg", "Linear Regression", linregSignal},
}

// Names lists the strategy names in display order.
func Names() []string {
	out := make([]string, len(strategies))
	for i, s := range strategies {
		out[i] = s.name
	}
	return out
}

func lookup(name string) (strategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range strategies {
		if s.name == name {
			return s, true
		}
	}
	return strategy{}, false
}

// Run backtests one strategy. The position decided at bar t-1 earns the return of bar t.
func Run(name string, bars Bars, cfg Config) (*Result, error) {
	s, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("backtest %q: %w", name, ErrUnknownStrategy)
	}
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("backtest %s: %w", s.name, err)
	}
	capital := cfg.Capital
	if capital <= 0 {
		capital = DefaultCapital
	}

	n := bars.Len()
	var signal []float64
	if s.signal == nil {
		signal = make([]float64, n)
		for i := range signal {
			signal[i] = 1
		}
	} else {
		signal = s.signal(bars)
	}

	returns := make([]float64, n)
	equity := make([]float64, n)
	equity[0] = capital
	for i := 1; i < n; i++ {
		r := bars.Close[i]/bars.Close[i-1] - 1
		returns[i] = signal[i-1] * r
		equity[i] = equity[i-1] * (1 + returns[i])
	}

	return &Result{
		Strategy: s.name,
		Label:    s.label,
		Signal:   signal,
		Returns:  returns,
		Equity:   timeseries.NewSeries(bars.Index, equity),
		Metrics:  computeMetrics(equity, returns),
	}, nil
}

// RunAll backtests every strategy; one failure fails the batch.
func RunAll(bars Bars, cfg Config) ([]*Result, error) {
	out := make([]*Result, 0, len(strategies))
	for _, s := range strategies {
		res, err := Run(s.name, bars, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func computeMetrics(equity, returns []float64) Metrics {
	n := len(equity)
	total := (equity[n-1]/equity[0] - 1) * 100
	years := float64(n) / portfolio.TradingDays
	annual := (math.Pow(1+total/100, 1/years) - 1) * 100

	period := returns[1:]
	vol := stats.StdDev(period) * math.Sqrt(portfolio.TradingDays) * 100
	sharpe := 0.0
	if vol != 0 {
		sharpe = (annual/100 - portfolio.DefaultRiskFree) / (vol / 100)
	}
	mdd := portfolio.MaxDrawdown(equity)
	calmar := 0.0
	if mdd != 0 {
		calmar = annual / math.Abs(mdd)
	}
	pf := portfolio.ProfitFactor(period)
	if !pf.Unbounded {
		pf = portfolio.Finite(portfolio.Round2(pf.Value))
	}
	return Metrics{
		TotalReturn:      portfolio.Round2(total),
		AnnualizedReturn: portfolio.Round2(annual),
		Volatility:       portfolio.Round2(vol),
		Sharpe:           portfolio.Round2(sharpe),
		MaxDrawdown:      portfolio.Round2(mdd),
		WinRate:          portfolio.Round2(portfolio.WinRate(period)),
		ProfitFactor:     pf,
		Calmar:           portfolio.Round2(calmar),
	}
}
