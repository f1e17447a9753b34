// Package metrics provides Prometheus self-metrics for quotaview.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Snapshot outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeUnreachable = "unreachable"
	OutcomeNoData      = "no_data"
)

// Collector holds all Prometheus metrics for quotaview.
type Collector struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Backend query metrics
	BackendQueries      *prometheus.CounterVec
	BackendDuration     prometheus.Histogram
	SnapshotsTotal      *prometheus.CounterVec
	MockSnapshotsTotal  prometheus.Counter

	// Session metrics
	SessionsPruned prometheus.Counter

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "quotaview",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"path"},
		),
		BackendQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "backend_queries_total",
				Help:      "Total instant queries issued to the metrics backend",
			},
			[]string{"outcome"},
		),
		BackendDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "quotaview",
				Name:      "backend_query_duration_seconds",
				Help:      "Metrics backend query duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		SnapshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "snapshots_total",
				Help:      "Usage snapshot computations by outcome",
			},
			[]string{"outcome"},
		),
		MockSnapshotsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "mock_snapshots_total",
				Help:      "Snapshots served from the mock generator",
			},
		),
		SessionsPruned: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "sessions_pruned_total",
				Help:      "Expired sessions removed by the janitor",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "quotaview",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
	}
}
