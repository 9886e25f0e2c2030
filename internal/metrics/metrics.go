package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry holds the bot's Prometheus collectors.
type Registry struct {
	Commands         *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	FetchErrors      *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec
	ChartCacheHits   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Registry {
	r := &Registry{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliolab_commands_total",
				Help: "Bot commands handled by command and outcome",
			},
			[]string{"command", "status"},
		),
		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfoliolab_analysis_duration_seconds",
				Help:    "Wall time of an analysis including data fetch",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"command"},
		),
		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliolab_fetch_errors_total",
				Help: "Market data fetch failures by kind",
			},
			[]string{"kind"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portfoliolab_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		ChartCacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfoliolab_chart_cache_total",
				Help: "Chart cache lookups by result",
			},
			[]string{"result"},
		),
		gatherer: reg,
	}
	reg.MustRegister(r.Commands, r.AnalysisDuration, r.FetchErrors, r.BreakerState, r.ChartCacheHits)
	return r
}

// Handler exposes the registry for scraping.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Timer measures one command from start to Stop.
type Timer struct {
	r       *Registry
	command string
	start   time.Time
}

func (r *Registry) StartTimer(command string) *Timer {
	return &Timer{r: r, command: command, start: time.Now()}
}

// Stop records the duration and outcome of the command.
func (t *Timer) Stop(status string) {
	if t == nil || t.r == nil {
		return
	}
	d := time.Since(t.start)
	t.r.AnalysisDuration.WithLabelValues(t.command).Observe(d.Seconds())
	t.r.Commands.WithLabelValues(t.command, status).Inc()
	log.Debug().
		Str("component", "metrics").
		Str("command", t.command).
		Str("status", status).
		Dur("duration", d).
		Msg("command completed")
}

func (r *Registry) FetchError(kind string) {
	if r == nil {
		return
	}
	r.FetchErrors.WithLabelValues(kind).Inc()
}

func (r *Registry) SetBreakerState(name string, state float64) {
	if r == nil {
		return
	}
	r.BreakerState.WithLabelValues(name).Set(state)
}

func (r *Registry) ChartCache(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.ChartCacheHits.WithLabelValues("hit").Inc()
	} else {
		r.ChartCacheHits.WithLabelValues("miss").Inc()
	}
}
