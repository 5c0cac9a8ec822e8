// Package metrics provides Prometheus metrics for admon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "admon"
)

// Run metrics
var (
	// RunsTotal counts monitoring runs by result.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "total",
			Help:      "Total monitoring runs",
		},
		[]string{"result"}, // success, failure
	)

	// RunDuration tracks full-run latency.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "duration_seconds",
			Help:      "Monitoring run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// TenantsProcessed counts tenants processed across runs.
	TenantsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "tenants_processed_total",
			Help:      "Total tenants processed",
		},
	)
)

// Alert metrics
var (
	// AlertsCreated counts tasks created in the tracker.
	AlertsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "created_total",
			Help:      "Total alerts created",
		},
	)

	// AlertsSkipped counts alerts suppressed by the fingerprint ledger.
	AlertsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "skipped_total",
			Help:      "Total alerts skipped as duplicates",
		},
	)

	// DispatchErrors counts task creation failures after retries.
	DispatchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "dispatch_errors_total",
			Help:      "Total dispatch failures after exhausting retries",
		},
	)
)

// Check metrics
var (
	// CheckDuration tracks per-check latency.
	CheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "duration_seconds",
			Help:      "Check execution latency in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"check"},
	)

	// CheckErrors counts check execution errors.
	CheckErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "check",
			Name:      "errors_total",
			Help:      "Total check execution errors",
		},
		[]string{"check"},
	)
)

// External API metrics
var (
	// PlatformQueryErrors counts failed platform query attempts.
	PlatformQueryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "platform",
			Name:      "query_errors_total",
			Help:      "Total failed ad-platform query attempts",
		},
	)

	// TrackerRequestErrors counts failed tracker request attempts.
	TrackerRequestErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "request_errors_total",
			Help:      "Total failed task-tracker request attempts",
		},
	)
)

// Ledger metrics
var (
	// LedgerSize tracks fingerprints currently stored.
	LedgerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "fingerprints",
			Help:      "Fingerprints currently in the ledger",
		},
	)

	// LedgerPruned counts fingerprints removed by cleanup.
	LedgerPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "pruned_total",
			Help:      "Total fingerprints removed by retention cleanup",
		},
	)
)

// Info metric
var (
	// BuildInfo exposes build information.
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "commit", "build_time"},
	)
)

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, commit, buildTime string) {
	BuildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}
