package fees

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
)

// Service resolves procedure codes through a Source, degrading to the
// fallback table on a miss or a source error. It never returns an error.
type Service struct {
	source   Source
	fallback *FallbackTable
	timeout  time.Duration
	log      zerolog.Logger
	metrics  *metrics.Metrics
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

// NewService builds a Service. source may be nil, in which case only the
// fallback table answers. A nil fallback disables fallback values.
func NewService(source Source, fallback *FallbackTable, opts ...Option) *Service {
	s := &Service{
		source:   source,
		fallback: fallback,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fallback returns the table the service falls back to.
func (s *Service) Fallback() *FallbackTable {
	return s.fallback
}

// Lookup resolves code to fee percentiles. A sourced row with at least one
// schedule is returned as is; a sourced row missing a schedule has it filled
// from the fallback entry; a missing row falls back entirely. Codes unknown
// to both yield nil with a fee_lookup_miss diagnostic.
func (s *Service) Lookup(ctx context.Context, code string) (*model.FeePercentiles, []model.Diagnostic) {
	norm := normalize.ProcedureCode(code)
	if norm == "" {
		return nil, nil
	}

	var diags []model.Diagnostic
	var row *model.FeePercentiles
	if s.source != nil {
		lctx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		var err error
		row, err = s.source.LookupFee(lctx, norm)
		if err != nil {
			s.log.Warn().Err(err).Str("code", norm).Msg("fee source lookup failed")
			s.metrics.ObserveLookup(metrics.KindFee, metrics.OutcomeError)
			diags = append(diags, model.Warn(model.DiagFeeLookupError, "fee lookup for %s failed: %v", norm, err))
			row = nil
		}
	}

	fb, hasFallback := s.fallback.Lookup(norm)

	if row != nil {
		row.Code = norm
		row.Origin = model.FeeOriginSourced
		if hasFallback && (row.ScheduleA == nil || row.ScheduleB == nil) {
			filled := false
			if row.ScheduleA == nil && fb.ScheduleA != nil {
				row.ScheduleA, filled = fb.ScheduleA, true
			}
			if row.ScheduleB == nil && fb.ScheduleB != nil {
				row.ScheduleB, filled = fb.ScheduleB, true
			}
			if filled {
				row.Origin = model.FeeOriginEstimated
				diags = append(diags, model.Info(model.DiagFeeEstimated, "fee schedules for %s completed from fallback table %s", norm, s.fallback.Version))
			}
			if row.Description == "" {
				row.Description = fb.Description
			}
		}
		if row.HasData() {
			if row.Origin == model.FeeOriginSourced {
				s.metrics.ObserveLookup(metrics.KindFee, metrics.OutcomeHit)
			} else {
				s.metrics.ObserveLookup(metrics.KindFee, metrics.OutcomeFallback)
			}
			return row, diags
		}
	}

	if hasFallback {
		s.log.Debug().Str("code", norm).Str("table_version", s.fallback.Version).Msg("using fallback fee percentiles")
		s.metrics.ObserveLookup(metrics.KindFee, metrics.OutcomeFallback)
		diags = append(diags, model.Info(model.DiagFeeEstimated, "fee percentiles for %s estimated from fallback table %s", norm, s.fallback.Version))
		return fb, diags
	}

	s.metrics.ObserveLookup(metrics.KindFee, metrics.OutcomeMiss)
	diags = append(diags, model.Warn(model.DiagFeeLookupMiss, "no fee percentiles for procedure code %s", norm))
	return nil, diags
}
