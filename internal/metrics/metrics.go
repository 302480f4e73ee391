// Package metrics exposes Prometheus metrics for availability computations
// and validations.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"librarybookings/internal/interval"
)

const namespace = "librarybookings"

// Metrics holds the collectors. It implements availability.Observer and
// validation.Observer.
type Metrics struct {
	// ComputationsTotal counts availability computations by constraint mode.
	ComputationsTotal *prometheus.CounterVec

	// ValidationsTotal counts validations by outcome.
	ValidationsTotal *prometheus.CounterVec

	// ValidationErrorsTotal counts validation failures by reason.
	ValidationErrorsTotal *prometheus.CounterVec

	// SkippedRecordsTotal counts bookings and checkouts dropped while indexing.
	SkippedRecordsTotal prometheus.Counter

	// ExcludedIntervalsTotal counts intervals removed for edited bookings.
	ExcludedIntervalsTotal prometheus.Counter

	// IndexBuildDuration is the time spent building the interval index.
	IndexBuildDuration prometheus.Histogram

	// IndexedIntervals is the interval count of the latest index.
	IndexedIntervals prometheus.Gauge

	// SnapshotReloadsTotal counts snapshot reloads by status.
	SnapshotReloadsTotal *prometheus.CounterVec

	once sync.Once
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		ComputationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "computations_total",
				Help:      "Count of availability computations by constraint mode.",
			},
			[]string{"mode"},
		),
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Count of date range validations by outcome.",
			},
			[]string{"outcome"},
		),
		ValidationErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Count of validation errors by reason.",
			},
			[]string{"reason"},
		),
		SkippedRecordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_records_total",
				Help:      "Count of invalid bookings and checkouts skipped while indexing.",
			},
		),
		ExcludedIntervalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "excluded_intervals_total",
				Help:      "Count of intervals excluded because their booking is being edited.",
			},
		),
		IndexBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "index_build_duration_seconds",
				Help:      "Time to build the interval index.",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		IndexedIntervals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "indexed_intervals",
				Help:      "Number of intervals in the most recent index.",
			},
		),
		SnapshotReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_reloads_total",
				Help:      "Count of snapshot reloads by status.",
			},
			[]string{"status"},
		),
	}
}

// Register registers the collectors with reg (idempotent). A nil reg means
// the default registerer.
func (m *Metrics) Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m.once.Do(func() {
		reg.MustRegister(
			m.ComputationsTotal,
			m.ValidationsTotal,
			m.ValidationErrorsTotal,
			m.SkippedRecordsTotal,
			m.ExcludedIntervalsTotal,
			m.IndexBuildDuration,
			m.IndexedIntervals,
			m.SnapshotReloadsTotal,
		)
	})
}

// ObserveCompute records one availability computation.
func (m *Metrics) ObserveCompute(mode string, stats interval.BuildStats, excluded int) {
	m.ComputationsTotal.WithLabelValues(mode).Inc()
	m.SkippedRecordsTotal.Add(float64(stats.Skipped))
	m.ExcludedIntervalsTotal.Add(float64(excluded))
	m.IndexBuildDuration.Observe(stats.Duration.Seconds())
	m.IndexedIntervals.Set(float64(stats.Intervals - excluded))
}

// ObserveValidation records one validation.
func (m *Metrics) ObserveValidation(valid bool, reasons []string) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.ValidationsTotal.WithLabelValues(outcome).Inc()
	for _, r := range reasons {
		m.ValidationErrorsTotal.WithLabelValues(r).Inc()
	}
}

// IncSnapshotReload counts a snapshot reload with status "ok" or "error".
func (m *Metrics) IncSnapshotReload(status string) {
	m.SnapshotReloadsTotal.WithLabelValues(status).Inc()
}
