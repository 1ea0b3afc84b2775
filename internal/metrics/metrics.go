// Package metrics holds the process's Prometheus registry and the
// instruments recorded around refresh runs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var registry = prometheus.NewRegistry()

var (
	// RefreshTotal counts completed refresh runs by outcome.
	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contribsync",
		Name:      "refresh_total",
		Help:      "Completed contribution refresh runs by outcome.",
	}, []string{"outcome"})

	// RefreshDuration observes the wall-clock duration of a full run.
	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contribsync",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of a full contribution refresh run.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	// LastSuccess records when a snapshot was last persisted.
	LastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "contribsync",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful refresh.",
	})
)

func init() {
	registry.MustRegister(RefreshTotal, RefreshDuration, LastSuccess)
}

// Registry returns the registry all instruments are registered with.
func Registry() *prometheus.Registry {
	return registry
}
