// Package metrics holds the Prometheus instruments for cost calculations and
// reference-data lookups. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carecost"

// Lookup kinds.
const (
	KindFee = "fee"
	KindGeo = "geo"
)

// Lookup outcomes.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	Calculations *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Lookups      *prometheus.CounterVec
	Diagnostics  *prometheus.CounterVec
	Cache        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which tests use for isolation.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Line-item cost calculations by strategy and pricing.",
		}, []string{"strategy", "pricing"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Wall time of a single line-item calculation, lookups included.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"strategy"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Reference-data lookups by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Recovered conditions reported on calculation results.",
		}, []string{"code"}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Reference cache requests by kind and result.",
		}, []string{"kind", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Calculations, m.Duration, m.Lookups, m.Diagnostics, m.Cache)
	}
	return m
}

// ObserveCalculation counts one calculation and its duration.
func (m *Metrics) ObserveCalculation(strategy, pricing string, d time.Duration) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(strategy, pricing).Inc()
	m.Duration.WithLabelValues(strategy).Observe(d.Seconds())
}

// ObserveLookup counts one lookup outcome.
func (m *Metrics) ObserveLookup(kind, outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(kind, outcome).Inc()
}

// ObserveDiagnostic counts one diagnostic code.
func (m *Metrics) ObserveDiagnostic(code string) {
	if m == nil {
		return
	}
	m.Diagnostics.WithLabelValues(code).Inc()
}

// ObserveCache counts a cache hit or miss.
func (m *Metrics) ObserveCache(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Cache.WithLabelValues(kind, result).Inc()
}
