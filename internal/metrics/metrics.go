// Package metrics exposes Prometheus counters for matching batches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides observability for the matching engine.
// Tracks filed records per pass, group formation, similarity work and
// records the engine had to drop.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RecordsFiled   *prometheus.CounterVec
	GroupsFormed   prometheus.Counter
	Comparisons    prometheus.Counter
	RecordsSkipped *prometheus.CounterVec
	OrphanLinks    prometheus.Counter
	BatchDuration  prometheus.Histogram
}

// New creates the engine metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them process-wide, or a
// fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsFiled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkage_records_filed_total",
			Help: "Total number of records filed into a group, by pass",
		}, []string{"pass"}),
		GroupsFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkage_groups_formed_total",
			Help: "Total number of groups created",
		}),
		Comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkage_comparisons_total",
			Help: "Total number of weighted field comparisons performed",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkage_records_skipped_total",
			Help: "Total number of records dropped before matching, by reason",
		}, []string{"reason"}),
		OrphanLinks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkage_orphan_links_total",
			Help: "Total number of records whose anchor group could not be found",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "linkage_batch_duration_seconds",
			Help:    "Duration of matching batches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
	}
	reg.MustRegister(
		m.RecordsFiled,
		m.GroupsFormed,
		m.Comparisons,
		m.RecordsSkipped,
		m.OrphanLinks,
		m.BatchDuration,
	)
	return m
}

// RecordFiled counts a record filed by the named pass.
func (m *Metrics) RecordFiled(pass string) {
	if m == nil {
		return
	}
	m.RecordsFiled.WithLabelValues(pass).Inc()
}

// GroupFormed counts a newly created group.
func (m *Metrics) GroupFormed() {
	if m == nil {
		return
	}
	m.GroupsFormed.Inc()
}

// AddComparisons adds n field comparisons.
func (m *Metrics) AddComparisons(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Comparisons.Add(float64(n))
}

// RecordSkipped counts a record dropped before matching.
func (m *Metrics) RecordSkipped(reason string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(reason).Inc()
}

// OrphanLink counts a record dropped for lack of an anchor group.
func (m *Metrics) OrphanLink() {
	if m == nil {
		return
	}
	m.OrphanLinks.Inc()
}

// ObserveBatch records the duration of a batch.
// Call with time.Now() at the start of the batch.
func (m *Metrics) ObserveBatch(start time.Time) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(time.Since(start).Seconds())
}
