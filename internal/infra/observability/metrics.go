package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus counters and histograms for the polling pipeline.
type Metrics struct {
	RunsTotal         prometheus.Counter
	RunFailures       prometheus.Counter
	AlertsParsed      prometheus.Counter
	AlertsSent        prometheus.Counter
	CancellationsSent prometheus.Counter
	GuidanceSent      prometheus.Counter
	RunDuration       prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunFailures,
		m.AlertsParsed,
		m.AlertsSent,
		m.CancellationsSent,
		m.GuidanceSent,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_alert_bot",
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs attempted.",
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_alert_bot",
			Name:      "pipeline_run_failures_total",
			Help:      "Pipeline runs that failed before completing.",
		}),
		AlertsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_alert_bot",
			Name:      "alerts_parsed_total",
			Help:      "Alerts parsed from the JMA feed across all runs.",
		}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_alert_bot",
			Name:      "alerts_sent_total",
			Help:      "New alert notifications delivered.",
		}),
		CancellationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_alert_bot",
			Name:      "cancellations_sent_total",
			Help:      "Cancellation notices delivered.",
		}),
		GuidanceSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jma_alert_bot",
			Name:      "guidance_sent_total",
			Help:      "School guidance announcements delivered.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jma_alert_bot",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of a complete fetch-parse-notify run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Handler returns the HTTP handler serving the default registry at /metrics.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
