package costcalc

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/carecost/internal/geo"
	"github.com/gyeh/carecost/internal/model"
)

var iqrMultiplier = decimal.RequireFromString("1.5")

// working is the per-occurrence cost range shared by all strategies.
type working struct {
	rng         model.CostRange
	feeOrigin   model.FeeOrigin
	geoAdjusted bool
	diags       []model.Diagnostic
}

// workingRange resolves the per-occurrence range for computed pricing.
// Fee and geographic lookups run concurrently; geographic factors are
// applied exactly once, to the fee schedules only.
func (e *Engine) workingRange(ctx context.Context, c Computed, log zerolog.Logger) working {
	var w working
	w.rng = model.FlatRange(c.BaseRate)

	if len(c.CostResources) > 0 {
		rng, dropped := resourceRange(c.CostResources)
		w.rng = rng
		if dropped > 0 {
			w.diags = append(w.diags, model.Info(model.DiagOutliersDropped, "%d of %d cost resources dropped as outliers from the average", dropped, len(c.CostResources)))
		}
		log.Debug().Int("resources", len(c.CostResources)).Int("outliers", dropped).Msg("cost resources applied")
	}

	var (
		fee      *model.FeePercentiles
		feeDiags []model.Diagnostic
		factors  *model.GeoFactors
		geoDiags []model.Diagnostic
	)
	g, gctx := errgroup.WithContext(ctx)
	if c.ProcedureCode != "" && e.fees != nil {
		g.Go(func() error {
			fee, feeDiags = e.fees.Lookup(gctx, c.ProcedureCode)
			return nil
		})
	}
	if c.PostalCode != "" && e.geo != nil {
		g.Go(func() error {
			factors, geoDiags = e.geo.Lookup(gctx, c.PostalCode)
			return nil
		})
	}
	_ = g.Wait()
	w.diags = append(w.diags, feeDiags...)
	w.diags = append(w.diags, geoDiags...)

	if !fee.HasData() {
		return w
	}
	w.feeOrigin = fee.Origin

	a, b := fee.ScheduleA, fee.ScheduleB
	if factors != nil {
		a, b = geo.Apply(a, b, *factors)
		w.geoAdjusted = true
	}

	var low, high decimal.Decimal
	switch {
	case a != nil && b != nil:
		low = model.Midpoint(a.Low, b.Low)
		high = model.Midpoint(a.High, b.High)
	case a != nil:
		low, high = a.Low, a.High
	default:
		low, high = b.Low, b.High
	}
	w.rng = model.RangeFromBounds(low, high)

	log.Debug().
		Str("code", fee.Code).
		Str("fee_origin", string(fee.Origin)).
		Bool("geo_adjusted", w.geoAdjusted).
		Str("low", low.String()).
		Str("high", high.String()).
		Msg("fee percentiles applied")
	return w
}

// resourceRange summarizes observed per-unit costs: low and high are the
// extremes, average is the mean of the values inside 1.5×IQR of the
// quartiles. It returns the number of values left out of the average.
func resourceRange(vals []decimal.Decimal) (model.CostRange, int) {
	sorted := append([]decimal.Decimal(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := len(sorted)
	q1 := sorted[n/4]
	q3 := sorted[n*3/4]
	iqr := q3.Sub(q1)
	lower := q1.Sub(iqr.Mul(iqrMultiplier))
	upper := q3.Add(iqr.Mul(iqrMultiplier))

	sum := decimal.Zero
	kept := 0
	for _, v := range sorted {
		if v.LessThan(lower) || v.GreaterThan(upper) {
			continue
		}
		sum = sum.Add(v)
		kept++
	}
	avg := sum.Div(decimal.NewFromInt(int64(kept)))

	return model.CostRange{Low: sorted[0], Average: avg, High: sorted[n-1]}, n - kept
}
