package costcalc

import (
	"github.com/shopspring/decimal"

	"github.com/gyeh/carecost/internal/frequency"
	"github.com/gyeh/carecost/internal/model"
)

// cost is the outcome of one strategy before rounding.
type cost struct {
	rng      model.CostRange
	annual   decimal.Decimal
	lifetime decimal.Decimal
}

// oneTimeCost has no annual component; the lifetime cost is the average.
func oneTimeCost(r model.CostRange) cost {
	return cost{rng: r, annual: decimal.Zero, lifetime: r.Average}
}

// recurringCost annualizes the per-occurrence range by the frequency bounds
// and extends it by the duration bounds. The high lifetime bound is the
// reported lifetime cost.
func recurringCost(r model.CostRange, f frequency.Frequency, d frequency.Duration) cost {
	lowAnnual := r.Low.Mul(f.Low)
	highAnnual := r.High.Mul(f.High)
	lowLifetime := lowAnnual.Mul(d.Low)
	highLifetime := highAnnual.Mul(d.High)
	return cost{
		rng:      model.RangeFromBounds(lowLifetime, highLifetime),
		annual:   model.Midpoint(lowAnnual, highAnnual),
		lifetime: highLifetime,
	}
}

// segmentedCost resolves every increment through the one-time or recurring
// rule with the increment's own span as duration, sums lifetimes and ranges,
// and reports the annual cost of the increment containing currentAge (or the
// first increment when no age is given or none contains it).
func segmentedCost(r model.CostRange, seg AgeSegmented) (cost, []model.Diagnostic) {
	var diags []model.Diagnostic
	if len(seg.Increments) == 0 {
		diags = append(diags, model.Warn(model.DiagIncrementsEmpty, "age-segmented item has no increments; cost is zero"))
		return cost{rng: model.FlatRange(decimal.Zero), annual: decimal.Zero, lifetime: decimal.Zero}, diags
	}

	total := cost{rng: model.FlatRange(decimal.Zero), annual: decimal.Zero, lifetime: decimal.Zero}
	active := -1
	for i, inc := range seg.Increments {
		span := inc.EndAge.Sub(inc.StartAge)
		if span.IsNegative() {
			diags = append(diags, model.Warn(model.DiagIncrementInvalid, "increment %d ends (%s) before it starts (%s); duration is zero", i, inc.EndAge, inc.StartAge))
		}
		var c cost
		if inc.OneTime {
			c = oneTimeCost(r)
		} else {
			c = recurringCost(r, inc.Frequency, frequency.Span(span, span))
		}
		total.rng = total.rng.Add(c.rng)
		total.lifetime = total.lifetime.Add(c.lifetime)

		if i == 0 {
			total.annual = c.annual
		}
		if active < 0 && seg.CurrentAge != nil && contains(inc, *seg.CurrentAge) {
			active = i
			total.annual = c.annual
		}
	}
	return total, diags
}

func contains(inc Increment, age decimal.Decimal) bool {
	return age.GreaterThanOrEqual(inc.StartAge) && age.LessThan(inc.EndAge)
}
