package costcalc

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gyeh/carecost/internal/model"
)

// CalculatePlan computes every item concurrently, bounded by
// Config.Concurrency. Outputs are in input order.
func (e *Engine) CalculatePlan(ctx context.Context, inputs []model.CareItemCostInput) []model.CareItemCostOutput {
	out := make([]model.CareItemCostOutput, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i := range inputs {
		i := i
		g.Go(func() error {
			out[i] = e.Calculate(gctx, inputs[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// PlanTotals aggregates the outputs of a plan.
type PlanTotals struct {
	Items        int             `json:"items"`
	CostRange    model.CostRange `json:"cost_range"`
	AnnualCost   decimal.Decimal `json:"annual_cost"`
	LifetimeCost decimal.Decimal `json:"lifetime_cost"`
	OneTimeCost  decimal.Decimal `json:"one_time_cost"`
}

// Totals sums the outputs. One-time lifetime costs are also reported
// separately so they are not mistaken for recurring spend.
func Totals(outs []model.CareItemCostOutput) PlanTotals {
	t := PlanTotals{
		Items:        len(outs),
		CostRange:    model.FlatRange(decimal.Zero),
		AnnualCost:   decimal.Zero,
		LifetimeCost: decimal.Zero,
		OneTimeCost:  decimal.Zero,
	}
	for _, o := range outs {
		t.CostRange = t.CostRange.Add(o.CostRange)
		t.AnnualCost = t.AnnualCost.Add(o.AnnualCost)
		t.LifetimeCost = t.LifetimeCost.Add(o.LifetimeCost)
		if o.IsOneTime {
			t.OneTimeCost = t.OneTimeCost.Add(o.LifetimeCost)
		}
	}
	return t
}
