package finance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"portfolioLab/internal/backtest"
	"portfolioLab/internal/metrics"
	"portfolioLab/internal/timeseries"
)

var defaultHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

// ProviderOptions configures a Provider. Zero values pick production defaults.
type ProviderOptions struct {
	Hosts          []string
	Client         *http.Client
	RequestsPerSec float64
	Backoffs       []time.Duration
	Metrics        *metrics.Registry
}

// Provider fetches daily history from Yahoo Finance behind a rate limiter and a circuit breaker.
type Provider struct {
	hosts    []string
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	backoffs []time.Duration
	metrics  *metrics.Registry
}

func NewProvider(opts ProviderOptions) *Provider {
	p := &Provider{
		hosts:    opts.Hosts,
		client:   opts.Client,
		backoffs: opts.Backoffs,
		metrics:  opts.Metrics,
	}
	if len(p.hosts) == 0 {
		p.hosts = defaultHosts
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 15 * time.Second}
	}
	if p.backoffs == nil {
		p.backoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
	}
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	p.limiter = rate.NewLimiter(rate.Limit(rps), 1)

	st := gobreaker.Settings{Name: "yahoo"}
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 5 }
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, errSymbolNotFound) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("component", "yahoo").Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		p.metrics.SetBreakerState(name, float64(to))
	}
	p.breaker = gobreaker.NewCircuitBreaker(st)
	return p
}

// daily fetches one symbol's cleaned daily bars for rangeParam, trying the chart
// endpoint first and the spark endpoint second.
func (p *Provider) daily(ctx context.Context, symbol, rangeParam string) (dailyBars, error) {
	out, err := p.breaker.Execute(func() (interface{}, error) {
		b, err := p.fetchChart(ctx, symbol, rangeParam)
		if err == nil {
			return b, nil
		}
		if errors.Is(err, errSymbolNotFound) || ctx.Err() != nil {
			return nil, err
		}
		log.Warn().Str("component", "yahoo").Str("symbol", symbol).Err(err).Msg("chart endpoint failed, trying spark")
		return p.fetchSpark(ctx, symbol, rangeParam)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.metrics.FetchError("breaker_open")
		}
		return dailyBars{}, fmt.Errorf("%s: %w: %v", symbol, ErrDataUnavailable, err)
	}
	b := cleanBars(out.(dailyBars))
	if len(b.Close) == 0 {
		return dailyBars{}, fmt.Errorf("%s: %w: no valid closes", symbol, ErrDataUnavailable)
	}
	return b, nil
}

func (p *Provider) window(ctx context.Context, symbol, window string) (dailyBars, error) {
	rangeParam, days, err := ParseWindow(window)
	if err != nil {
		return dailyBars{}, err
	}
	b, err := p.daily(ctx, strings.ToUpper(strings.TrimSpace(symbol)), rangeParam)
	if err != nil {
		return dailyBars{}, err
	}
	return filterToTargetDays(b, days), nil
}

func toTimes(ts []int64) []time.Time {
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		out[i] = time.Unix(t, 0).UTC()
	}
	return out
}

// FetchSeries returns the daily closes of symbol over window.
func (p *Provider) FetchSeries(ctx context.Context, symbol, window string) (timeseries.Series, error) {
	b, err := p.window(ctx, symbol, window)
	if err != nil {
		return timeseries.Series{}, err
	}
	return timeseries.NewSeries(toTimes(b.Time), b.Close), nil
}

// FetchReturns returns the simple daily returns of symbol over window, as used for a benchmark.
func (p *Provider) FetchReturns(ctx context.Context, symbol, window string) (timeseries.Series, error) {
	s, err := p.FetchSeries(ctx, symbol, window)
	if err != nil {
		return timeseries.Series{}, err
	}
	if s.Len() < 2 {
		return timeseries.Series{}, fmt.Errorf("%s: %w: fewer than two closes", symbol, ErrDataUnavailable)
	}
	return timeseries.SimpleReturns(s), nil
}

// FetchBars returns OHLC bars for a backtest.
func (p *Provider) FetchBars(ctx context.Context, symbol, window string) (backtest.Bars, error) {
	b, err := p.window(ctx, symbol, window)
	if err != nil {
		return backtest.Bars{}, err
	}
	return backtest.Bars{
		Index: toTimes(b.Time),
		Open:  b.Open,
		High:  b.High,
		Low:   b.Low,
		Close: b.Close,
	}, nil
}

// FetchPriceTable fetches every symbol and keeps the trading dates they all share.
func (p *Provider) FetchPriceTable(ctx context.Context, symbols []string, window string) (timeseries.PriceTable, error) {
	if len(symbols) == 0 {
		return timeseries.PriceTable{}, fmt.Errorf("fetch: %w", timeseries.ErrEmptyInput)
	}
	series := make(map[string]timeseries.Series, len(symbols))
	assets := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if _, dup := series[sym]; dup || sym == "" {
			continue
		}
		s, err := p.FetchSeries(ctx, sym, window)
		if err != nil {
			return timeseries.PriceTable{}, err
		}
		series[sym] = s
		assets = append(assets, sym)
	}
	table, err := timeseries.Intersect(assets, series)
	if err != nil {
		return timeseries.PriceTable{}, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	log.Debug().Str("component", "yahoo").Strs("symbols", assets).Int("rows", table.Rows()).Msg("price table ready")
	return table, nil
}
