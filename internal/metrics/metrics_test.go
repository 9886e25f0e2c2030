package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerRecordsCommand(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.StartTimer("port").Stop("ok")
	r.StartTimer("port").Stop("error")
	r.StartTimer("port").Stop("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Commands.WithLabelValues("port", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Commands.WithLabelValues("port", "error")))
}

func TestNilRegistryIsSafe(t *testing.T) {
	var r *Registry
	r.FetchError("timeout")
	r.SetBreakerState("yahoo", 2)
	r.ChartCache(true)
	var tm *Timer
	tm.Stop("ok")
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.FetchError("http")
	r.SetBreakerState("yahoo", 1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `portfoliolab_fetch_errors_total{kind="http"} 1`)
	assert.Contains(t, string(body), `portfoliolab_breaker_state{name="yahoo"} 1`)
}
