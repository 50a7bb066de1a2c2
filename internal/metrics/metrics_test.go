package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Classified("FAST_TRAVEL", false)
	m.Classified("FAST_TRAVEL", false)
	m.Classified("FAST_TRAVEL", true)
	m.Settled()
	m.BrandChecked(true)
	m.MembershipSignal(true, true)
	m.ScanFailed("late_winter")
	m.SetQueued(3)
	m.Action("show_fancy_menu")
	m.SetInMode(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.classifications.WithLabelValues("FAST_TRAVEL", "full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues("FAST_TRAVEL", "title")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settleFires))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.brandChecks.WithLabelValues("target")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.membership.WithLabelValues("confirmed_settled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scanFailures.WithLabelValues("late_winter")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queuedEvents))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inMode))

	m.SetInMode(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inMode))

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 9, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Classified("NONE", true)
		m.Settled()
		m.BrandChecked(false)
		m.MembershipSignal(false, false)
		m.ScanFailed("season")
		m.SetQueued(1)
		m.Action("close_menu")
		m.SetInMode(true)
	})
}
