package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordFiled("customer")
	m.RecordFiled("customer")
	m.RecordFiled("business")
	m.GroupFormed()
	m.AddComparisons(7)
	m.AddComparisons(0)
	m.RecordSkipped("UNRESOLVABLE_RECORD")
	m.OrphanLink()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsFiled.WithLabelValues("customer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsFiled.WithLabelValues("business")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GroupsFormed))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Comparisons))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsSkipped.WithLabelValues("UNRESOLVABLE_RECORD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrphanLinks))
}

func TestMetrics_ObserveBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBatch(time.Now())

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "linkage_batch_duration_seconds" {
			assert.Equal(t, uint64(1), f.GetMetric()[0].GetHistogram().GetSampleCount())
			return
		}
	}
	t.Fatal("batch duration histogram not gathered")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordFiled("customer")
		m.GroupFormed()
		m.AddComparisons(3)
		m.RecordSkipped("x")
		m.OrphanLink()
		m.ObserveBatch(time.Now())
	})
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}
