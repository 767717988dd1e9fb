package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SwapStarted()
	m.SwapStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SwapsInFlight))

	m.SwapFinished("SUCCESS")
	m.SwapFinished("error")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SwapsInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapsTotal.WithLabelValues("SUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SwapsTotal.WithLabelValues("error")))
}

func TestStatusQueriesAndSteps(t *testing.T) {
	m := NewMetrics(nil)

	m.ObserveStatusQuery("pending")
	m.ObserveStatusQuery("pending")
	m.ObserveStatusQuery("terminal")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusQueries.WithLabelValues("pending")))

	m.ObserveStep(StepQuote, 120*time.Millisecond)
	m.ObserveStep(StepSubmit, time.Second)
	assert.Equal(t, 2, testutil.CollectAndCount(m.StepDuration))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.SwapStarted()
	m.SwapFinished("SUCCESS")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gmgn_swap_swaps_total{outcome="SUCCESS"} 1`)
}
