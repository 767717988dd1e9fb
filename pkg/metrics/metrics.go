// Package metrics provides Prometheus metrics for swap execution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gmgn_swap"

// Swap steps, used as the "step" label.
const (
	StepQuote  = "quote"
	StepSign   = "sign"
	StepSubmit = "submit"
	StepWait   = "wait"
)

// Metrics holds the swap collectors.
type Metrics struct {
	SwapsTotal    *prometheus.CounterVec
	StatusQueries *prometheus.CounterVec
	StepDuration  *prometheus.HistogramVec
	SwapsInFlight prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. A nil reg uses a fresh
// registry, which keeps repeated construction in tests from colliding.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		SwapsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_total",
			Help:      "Total number of swaps by outcome",
		}, []string{"outcome"}),
		StatusQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_queries_total",
			Help:      "Total number of transaction status queries by result",
		}, []string{"result"}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of each swap step",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"step"}),
		SwapsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "swaps_in_flight",
			Help:      "Number of swaps currently executing",
		}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler returns an HTTP handler exposing the registry the metrics were
// registered on.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveStatusQuery counts one status query.
func (m *Metrics) ObserveStatusQuery(result string) {
	m.StatusQueries.WithLabelValues(result).Inc()
}

// ObserveStep records how long a step took.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// SwapStarted marks a swap as in flight
func (m *Metrics) SwapStarted() {
	m.SwapsInFlight.Inc()
}

// SwapFinished records the final outcome of a swap.
func (m *Metrics) SwapFinished(outcome string) {
	m.SwapsInFlight.Dec()
	m.SwapsTotal.WithLabelValues(outcome).Inc()
}
