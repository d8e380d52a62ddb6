// Package geo resolves postal codes to regional cost multipliers and applies
// them to fee schedules.
package geo

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
)

// Source looks up geographic factors by 5-digit ZIP.
// A nil result with a nil error means the postal code is unknown.
type Source interface {
	LookupGeoFactors(ctx context.Context, postalCode string) (*model.GeoFactors, error)
}

// Apply scales fee schedules by regional factors. The factors are
// cross-applied: schedule A fees take the schedule B factor and schedule B
// fees take the schedule A factor. nil schedules stay nil.
func Apply(feeA, feeB *model.FeeSchedule, f model.GeoFactors) (adjA, adjB *model.FeeSchedule) {
	if feeA != nil {
		a := feeA.Scale(f.ScheduleBFactor)
		adjA = &a
	}
	if feeB != nil {
		b := feeB.Scale(f.ScheduleAFactor)
		adjB = &b
	}
	return adjA, adjB
}

// Service resolves postal codes through a Source. Misses and errors
// degrade to nil factors, which means no adjustment.
type Service struct {
	source  Source
	timeout time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each source call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the logger used for degraded lookups.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics records lookup outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds a Service over source, which may be nil.
func NewService(source Source, opts ...Option) *Service {
	s := &Service{source: source, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the factors for postalCode, or nil with a diagnostic.
// Non-positive factors from the source are treated as a miss.
func (s *Service) Lookup(ctx context.Context, postalCode string) (*model.GeoFactors, []model.Diagnostic) {
	if postalCode == "" {
		return nil, nil
	}
	zip, ok := normalize.PostalCode(postalCode)
	if !ok {
		s.metrics.ObserveLookup(metrics.KindGeo, metrics.OutcomeMiss)
		return nil, []model.Diagnostic{model.Warn(model.DiagGeoLookupMiss, "postal code %q is not a US ZIP; no geographic adjustment", postalCode)}
	}
	if s.source == nil {
		s.metrics.ObserveLookup(metrics.KindGeo, metrics.OutcomeMiss)
		return nil, []model.Diagnostic{model.Warn(model.DiagGeoLookupMiss, "no geographic source configured for %s", zip)}
	}

	lctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	f, err := s.source.LookupGeoFactors(lctx, zip)
	if err != nil {
		s.log.Warn().Err(err).Str("postal_code", zip).Msg("geo source lookup failed")
		s.metrics.ObserveLookup(metrics.KindGeo, metrics.OutcomeError)
		return nil, []model.Diagnostic{model.Warn(model.DiagGeoLookupError, "geo lookup for %s failed: %v", zip, err)}
	}
	if f == nil || !f.ScheduleAFactor.IsPositive() || !f.ScheduleBFactor.IsPositive() {
		s.metrics.ObserveLookup(metrics.KindGeo, metrics.OutcomeMiss)
		return nil, []model.Diagnostic{model.Warn(model.DiagGeoLookupMiss, "no geographic factors for %s; no adjustment applied", zip)}
	}
	s.metrics.ObserveLookup(metrics.KindGeo, metrics.OutcomeHit)
	out := *f
	out.PostalCode = zip
	return &out, nil
}

// MemorySource is a map-backed Source. The zero value is empty and usable.
type MemorySource struct {
	mu   sync.RWMutex
	rows map[string]model.GeoFactors
}

// NewMemorySource returns a MemorySource holding rows.
func NewMemorySource(rows ...model.GeoFactors) *MemorySource {
	s := &MemorySource{}
	for _, r := range rows {
		s.Put(r)
	}
	return s
}

// Put adds or replaces the factors for r.PostalCode.
func (s *MemorySource) Put(r model.GeoFactors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[string]model.GeoFactors)
	}
	if zip, ok := normalize.PostalCode(r.PostalCode); ok {
		r.PostalCode = zip
	}
	s.rows[r.PostalCode] = r
}

// LookupGeoFactors implements Source.
func (s *MemorySource) LookupGeoFactors(_ context.Context, postalCode string) (*model.GeoFactors, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[postalCode]
	if !ok {
		return nil, nil
	}
	return &r, nil
}
