package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SweeperMetrics struct {
	registry *prometheus.Registry

	sweepTotal    *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
	filesRemoved  *prometheus.CounterVec
}

func NewSweeperMetrics(service string) *SweeperMetrics {
	registry := prometheus.NewRegistry()

	sweepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "effidash",
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Total staging directory sweeps by status.",
		},
		[]string{"service", "status"},
	)
	sweepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "effidash",
			Subsystem: "sweeper",
			Name:      "run_duration_seconds",
			Help:      "Staging directory sweep duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	filesRemoved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "effidash",
			Subsystem: "sweeper",
			Name:      "files_removed_total",
			Help:      "Total stale staged files removed.",
		},
		[]string{"service"},
	)

	registry.MustRegister(sweepTotal, sweepDuration, filesRemoved)

	return &SweeperMetrics{
		registry:      registry,
		sweepTotal:    sweepTotal,
		sweepDuration: sweepDuration,
		filesRemoved:  filesRemoved,
	}
}

func (m *SweeperMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SweeperMetrics) FinishSweep(service string, removed int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.sweepTotal.WithLabelValues(service, status).Inc()
	m.sweepDuration.WithLabelValues(service).Observe(duration.Seconds())
	if removed > 0 {
		m.filesRemoved.WithLabelValues(service).Add(float64(removed))
	}
}
