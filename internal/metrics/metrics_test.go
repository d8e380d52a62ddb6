package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCalculation("recurring", "computed", 3*time.Millisecond)
	m.ObserveLookup(KindFee, OutcomeFallback)
	m.ObserveLookup(KindFee, OutcomeFallback)
	m.ObserveDiagnostic("fee_estimated")
	m.ObserveCache(KindGeo, true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("recurring", "computed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lookups.WithLabelValues(KindFee, OutcomeFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues("fee_estimated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cache.WithLabelValues(KindGeo, "hit")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestDoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCalculation("one_time", "manual", time.Second)
		m.ObserveLookup(KindGeo, OutcomeMiss)
		m.ObserveDiagnostic("geo_lookup_miss")
		m.ObserveCache(KindFee, false)
	})
}
