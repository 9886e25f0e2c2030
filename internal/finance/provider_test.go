package finance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioLab/internal/metrics"
)

// 2024-01-02..04, 14:30 UTC (US open)
var usOpen = []int64{1704205800, 1704292200, 1704378600}

const day0 = int64(1704153600) // 2024-01-02 00:00 UTC

func chartBody(t *testing.T, ts []int64, offset int64, closes []any) []byte {
	t.Helper()
	quote := map[string]any{"open": closes, "high": closes, "low": closes, "close": closes}
	body := map[string]any{"chart": map[string]any{
		"result": []any{map[string]any{
			"meta":       map[string]any{"symbol": "X", "gmtoffset": offset},
			"timestamp":  ts,
			"indicators": map[string]any{"quote": []any{quote}},
		}},
		"error": nil,
	}}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return b
}

func testProvider(srv *httptest.Server, m *metrics.Registry) *Provider {
	return NewProvider(ProviderOptions{
		Hosts:          []string{srv.URL},
		Client:         srv.Client(),
		RequestsPerSec: 1000,
		Backoffs:       []time.Duration{},
		Metrics:        m,
	})
}

func TestFetchSeriesCleansNullsAndNormalisesDates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write(chartBody(t, usOpen, -18000, []any{100.0, nil, 102.0}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := testProvider(srv, nil).FetchSeries(context.Background(), "aapl", "1y")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 102}, s.Values)
	assert.Equal(t, time.Unix(day0, 0).UTC(), s.Index[0])
	assert.Equal(t, time.Unix(day0+2*86400, 0).UTC(), s.Index[1])
}

func TestFetchPriceTableAlignsVenues(t *testing.T) {
	// Paris opens at 08:00 UTC on the same dates.
	paris := []int64{usOpen[0] - 6*3600 - 1800, usOpen[1] - 6*3600 - 1800, usOpen[2] - 6*3600 - 1800}
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(chartBody(t, usOpen, -18000, []any{100.0, 101.0, 102.0}))
	})
	mux.HandleFunc("/v8/finance/chart/GLE.PA", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(chartBody(t, paris[1:], 3600, []any{20.0, 21.0}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	table, err := testProvider(srv, nil).FetchPriceTable(context.Background(), []string{"AAPL", "GLE.PA", "aapl"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GLE.PA"}, table.Assets)
	require.Equal(t, 2, table.Rows())
	assert.Equal(t, []float64{101, 102}, table.Prices["AAPL"])
	assert.Equal(t, []float64{20, 21}, table.Prices["GLE.PA"])
}

func TestUnknownSymbolDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	m := metrics.New(prometheus.NewRegistry())
	p := testProvider(srv, m)

	for i := 0; i < 6; i++ {
		_, err := p.FetchSeries(context.Background(), "NOPE", "1m")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDataUnavailable))
	}
	assert.Equal(t, gobreaker.StateClosed, p.breaker.State())
	assert.Equal(t, 6.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("not_found")))
}

func TestSparkFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/SPY", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	})
	mux.HandleFunc("/v7/finance/spark", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SPY", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"spark":{"result":[{"symbol":"SPY","response":[{"timestamp":[1704205800,1704292200],"close":[470.5,472.0]}]}],"error":null}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	bars, err := testProvider(srv, nil).FetchBars(context.Background(), "SPY", "5d")
	require.NoError(t, err)
	assert.Equal(t, []float64{470.5, 472.0}, bars.Close)
	assert.Equal(t, bars.Close, bars.High)
	require.NoError(t, bars.Validate())
}

func TestBreakerOpensOnRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	m := metrics.New(prometheus.NewRegistry())
	p := testProvider(srv, m)

	for i := 0; i < 5; i++ {
		_, err := p.FetchSeries(context.Background(), "SPY", "1m")
		require.Error(t, err)
	}
	before := hits.Load()
	_, err := p.FetchSeries(context.Background(), "SPY", "1m")
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.Equal(t, before, hits.Load())
	assert.Equal(t, gobreaker.StateOpen, p.breaker.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("yahoo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrors.WithLabelValues("breaker_open")))
}

func TestFetchReturnsNeedsTwoCloses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/SPY", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(chartBody(t, usOpen[:1], -18000, []any{400.0}))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := testProvider(srv, nil).FetchReturns(context.Background(), "SPY", "1m")
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestTradingDate(t *testing.T) {
	assert.Equal(t, day0, tradingDate(usOpen[0], -18000))
	// 23:30 local on Jan 1 in New York is still Jan 1 although UTC already rolled over.
	assert.Equal(t, day0-86400, tradingDate(day0+4*3600+1800, -18000))
}
