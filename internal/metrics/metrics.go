// Package metrics exposes Prometheus collectors for conversions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "htmlconvert"

// Outcome labels the result of a conversion request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeInvalid Outcome = "invalid" // rejected input, HTTP 400
	OutcomeError   Outcome = "error"   // render or storage failure, HTTP 500
)

// Metrics holds the collectors of one registry. The zero value is not
// usable; a nil *Metrics records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	outputBytes *prometheus.CounterVec
}

// New registers the conversion collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversion requests by output format and outcome.",
		}, []string{"format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent rendering and storing a document.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"format"}),
		outputBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written to the output directory.",
		}, []string{"format"}),
	}
	m.registry.MustRegister(
		m.conversions,
		m.duration,
		m.outputBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one finished conversion. size is ignored unless the
// outcome is a success.
func (m *Metrics) Observe(format string, outcome Outcome, elapsed time.Duration, size int64) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(format, string(outcome)).Inc()
	if outcome != OutcomeSuccess {
		return
	}
	m.duration.WithLabelValues(format).Observe(elapsed.Seconds())
	m.outputBytes.WithLabelValues(format).Add(float64(size))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
