package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for a sampling run.
type Metrics struct {
	Registry *prometheus.Registry

	SamplesStored   prometheus.Counter
	SamplesSkipped  *prometheus.CounterVec // labels: reason={malformed,missing_field,zero_duration}
	RoutingRequests *prometheus.CounterVec // labels: outcome={success,bad_sample,error}
	RoutingDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with a private registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.Registry.MustRegister(
		m.SamplesStored,
		m.SamplesSkipped,
		m.RoutingRequests,
		m.RoutingDuration,
	)
	return m
}

// NewMetricsForTesting returns unregistered collectors, so tests can build
// as many instances as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Registry: prometheus.NewRegistry(),
		SamplesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "journeys",
			Name:      "samples_stored_total",
			Help:      "Journey samples appended to the results store.",
		}),
		SamplesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journeys",
			Name:      "samples_skipped_total",
			Help:      "Journey samples skipped because of a bad routing response.",
		}, []string{"reason"}),
		RoutingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journeys",
			Name:      "routing_requests_total",
			Help:      "Distance matrix requests by outcome.",
		}, []string{"outcome"}),
		RoutingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "journeys",
			Name:      "routing_request_duration_seconds",
			Help:      "Distance matrix request latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// WriteTextfile dumps the registry in the Prometheus text format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}
