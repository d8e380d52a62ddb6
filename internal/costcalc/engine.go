// Package costcalc estimates the cost of a single care-plan line item: a
// per-occurrence cost range, an annual cost and a lifetime cost.
package costcalc

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gyeh/carecost/internal/fees"
	"github.com/gyeh/carecost/internal/geo"
	"github.com/gyeh/carecost/internal/metrics"
	"github.com/gyeh/carecost/internal/model"
)

// OutputPlaces is the precision of every computed amount.
const OutputPlaces = 2

// DefaultConcurrency bounds CalculatePlan when Config.Concurrency is unset.
const DefaultConcurrency = 8

// Config tunes an Engine.
type Config struct {
	// RangeSpread widens a flat computed range to avg×(1−s)..avg×(1+s) for
	// display. Zero disables it. Annual and lifetime costs are unaffected.
	RangeSpread decimal.Decimal
	// Concurrency bounds how many items CalculatePlan computes at once.
	Concurrency int
}

// Engine computes line-item costs. It is immutable and safe for
// concurrent use.
type Engine struct {
	fees    *fees.Service
	geo     *geo.Service
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewEngine builds an Engine. Either service may be nil, which disables
// that lookup.
func NewEngine(feeSvc *fees.Service, geoSvc *geo.Service, cfg Config, log zerolog.Logger, m *metrics.Metrics) *Engine {
	if cfg.RangeSpread.IsNegative() {
		cfg.RangeSpread = decimal.Zero
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Engine{fees: feeSvc, geo: geoSvc, cfg: cfg, log: log, metrics: m}
}

// Calculate classifies in and computes its cost. It always returns a
// well-formed output; recovered problems are listed in Diagnostics.
func (e *Engine) Calculate(ctx context.Context, in model.CareItemCostInput) model.CareItemCostOutput {
	item, diags := Classify(in)
	return e.calculate(ctx, item, diags)
}

// CalculateItem computes the cost of an already classified item.
func (e *Engine) CalculateItem(ctx context.Context, item Item) model.CareItemCostOutput {
	return e.calculate(ctx, item, nil)
}

func (e *Engine) calculate(ctx context.Context, item Item, diags []model.Diagnostic) model.CareItemCostOutput {
	start := time.Now()
	if item.Plan == nil {
		item.Plan = OneTime{}
	}
	if item.Pricing == nil {
		item.Pricing = Computed{}
	}

	strategy := strategyName(item.Plan)
	log := e.log.With().
		Str("calc_id", uuid.New().String()).
		Str("strategy", string(strategy)).
		Logger()

	out := model.CareItemCostOutput{Strategy: strategy, Category: item.Category}

	var perOccurrence model.CostRange
	pricing := "computed"
	switch p := item.Pricing.(type) {
	case Manual:
		pricing = "manual"
		out.Manual = true
		perOccurrence = p.Range
		log.Debug().Msg("manual override; lookups skipped")
	case Computed:
		w := e.workingRange(ctx, p, log)
		perOccurrence = w.rng
		out.FeeOrigin = w.feeOrigin
		out.GeoAdjusted = w.geoAdjusted
		diags = append(diags, w.diags...)
	}

	var c cost
	switch p := item.Plan.(type) {
	case OneTime:
		out.IsOneTime = true
		c = oneTimeCost(perOccurrence)
	case Recurring:
		c = recurringCost(perOccurrence, p.Frequency, p.Duration)
		log.Debug().
			Str("freq_low", p.Frequency.Low.String()).
			Str("freq_high", p.Frequency.High.String()).
			Str("duration_low", p.Duration.Low.String()).
			Str("duration_high", p.Duration.High.String()).
			Str("duration_source", string(p.Duration.Source)).
			Msg("recurring cost resolved")
	case AgeSegmented:
		var segDiags []model.Diagnostic
		c, segDiags = segmentedCost(perOccurrence, p)
		diags = append(diags, segDiags...)
		log.Debug().Int("increments", len(p.Increments)).Msg("age-segmented cost resolved")
	}

	c.annual = e.clamp(c.annual, "annual cost", &diags)
	c.lifetime = e.clamp(c.lifetime, "lifetime cost", &diags)
	out.AnnualCost = c.annual.Round(OutputPlaces)
	out.LifetimeCost = c.lifetime.Round(OutputPlaces)

	if m, ok := item.Pricing.(Manual); ok {
		out.CostRange = m.Range
	} else {
		out.CostRange = e.displayRange(c.rng, &diags).Round(OutputPlaces)
	}
	out.Diagnostics = diags

	for _, d := range diags {
		ev := log.Info()
		if d.Level == model.LevelWarn {
			ev = log.Warn()
		}
		ev.Str("code", string(d.Code)).Msg(d.Message)
		e.metrics.ObserveDiagnostic(string(d.Code))
	}
	elapsed := time.Since(start)
	e.metrics.ObserveCalculation(string(strategy), pricing, elapsed)

	log.Debug().
		Str("category", item.Category).
		Str("pricing", pricing).
		Str("annual", out.AnnualCost.String()).
		Str("lifetime", out.LifetimeCost.String()).
		Dur("elapsed", elapsed).
		Msg("line item calculated")
	return out
}

// displayRange coerces negatives to zero, restores low <= average <= high,
// and applies the configured spread to flat ranges.
func (e *Engine) displayRange(r model.CostRange, diags *[]model.Diagnostic) model.CostRange {
	r.Low = e.clamp(r.Low, "range low", diags)
	r.Average = e.clamp(r.Average, "range average", diags)
	r.High = e.clamp(r.High, "range high", diags)
	if !r.Ordered() {
		pts := []decimal.Decimal{r.Low, r.Average, r.High}
		sort.Slice(pts, func(i, j int) bool { return pts[i].LessThan(pts[j]) })
		r = model.CostRange{Low: pts[0], Average: pts[1], High: pts[2]}
	}
	if e.cfg.RangeSpread.IsPositive() && r.IsFlat() && r.Average.IsPositive() {
		one := decimal.NewFromInt(1)
		r.Low = r.Average.Mul(one.Sub(e.cfg.RangeSpread))
		r.High = r.Average.Mul(one.Add(e.cfg.RangeSpread))
		r.Low = e.clamp(r.Low, "spread low", diags)
	}
	return r
}

func (e *Engine) clamp(d decimal.Decimal, what string, diags *[]model.Diagnostic) decimal.Decimal {
	if d.IsNegative() {
		*diags = append(*diags, model.Warn(model.DiagNumericCoerced, "%s %s coerced to 0", what, d))
		return decimal.Zero
	}
	return d
}

func strategyName(p Plan) model.StrategyName {
	switch p.(type) {
	case Recurring:
		return model.StrategyRecurring
	case AgeSegmented:
		return model.StrategyAgeSegmented
	default:
		return model.StrategyOneTime
	}
}
