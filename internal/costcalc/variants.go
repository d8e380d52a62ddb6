package costcalc

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/gyeh/carecost/internal/frequency"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
)

// Plan is how often a line item occurs: OneTime, Recurring or AgeSegmented.
type Plan interface {
	plan()
}

// OneTime is a single occurrence.
type OneTime struct{}

// Recurring repeats at Frequency for Duration years.
type Recurring struct {
	Frequency frequency.Frequency
	Duration  frequency.Duration
}

// AgeSegmented splits the plan into age increments, each with its own rule.
type AgeSegmented struct {
	Increments []Increment
	// CurrentAge selects the increment whose annual cost is reported.
	CurrentAge *decimal.Decimal
}

// Increment is one resolved age segment.
type Increment struct {
	StartAge  decimal.Decimal
	EndAge    decimal.Decimal
	Frequency frequency.Frequency
	OneTime   bool
}

func (OneTime) plan()      {}
func (Recurring) plan()    {}
func (AgeSegmented) plan() {}

// Pricing is where the per-occurrence cost comes from: Computed or Manual.
type Pricing interface {
	pricing()
}

// Computed prices an occurrence from the base rate, observed cost resources,
// fee percentiles and geographic factors.
type Computed struct {
	BaseRate      decimal.Decimal
	ProcedureCode string
	PostalCode    string
	CostResources []decimal.Decimal
}

// Manual is a caller-supplied range that bypasses every lookup.
type Manual struct {
	Range model.CostRange
}

func (Computed) pricing() {}
func (Manual) pricing()   {}

// Item is a classified line item.
type Item struct {
	Plan     Plan
	Pricing  Pricing
	Category string
}

// Classify maps the loose caller input onto plan and pricing variants.
// Non-empty age increments select AgeSegmented, then the one-time sentinel
// in Frequency selects OneTime, otherwise the item is Recurring. Numeric
// inputs that are NaN, infinite or negative are coerced to zero.
func Classify(in model.CareItemCostInput) (Item, []model.Diagnostic) {
	var diags []model.Diagnostic
	item := Item{Category: in.Category}

	switch {
	case in.IsManualCost && in.ManualValues != nil:
		r := model.CostRange{
			Low:     amount(in.ManualValues.Low, "manual low", &diags),
			Average: amount(in.ManualValues.Average, "manual average", &diags),
			High:    amount(in.ManualValues.High, "manual high", &diags),
		}
		if !r.Ordered() {
			diags = append(diags, model.Warn(model.DiagManualRangeUnordered, "manual range %s/%s/%s is not ordered low <= average <= high", r.Low, r.Average, r.High))
		}
		item.Pricing = Manual{Range: r}
	default:
		if in.IsManualCost {
			diags = append(diags, model.Warn(model.DiagManualValuesMissing, "manual cost requested without manual values; computing instead"))
		}
		c := Computed{
			BaseRate:      amount(in.BaseRate, "base rate", &diags),
			ProcedureCode: in.ProcedureCode,
			PostalCode:    in.PostalCode,
		}
		for i, v := range in.CostResources {
			d, ok := normalize.Amount(v)
			if !ok {
				diags = append(diags, model.Warn(model.DiagNumericCoerced, "cost resource %d (%v) ignored", i, v))
				continue
			}
			c.CostResources = append(c.CostResources, d)
		}
		item.Pricing = c
	}

	switch {
	case len(in.AgeIncrements) > 0:
		seg := AgeSegmented{Increments: make([]Increment, 0, len(in.AgeIncrements))}
		if in.CurrentAge != nil && !math.IsNaN(*in.CurrentAge) && !math.IsInf(*in.CurrentAge, 0) {
			age := decimal.NewFromFloat(*in.CurrentAge)
			seg.CurrentAge = &age
		}
		for i, inc := range in.AgeIncrements {
			seg.Increments = append(seg.Increments, classifyIncrement(i, inc, &diags))
		}
		item.Plan = seg
	case frequency.IsOneTime(in.Frequency):
		item.Plan = OneTime{}
	default:
		f := frequency.Parse(in.Frequency)
		if !f.Recognized {
			diags = append(diags, model.Warn(model.DiagFrequencyUnrecognized, "frequency %q not recognized; assuming once per year", in.Frequency))
		}
		d := frequency.ParseDuration(in.Frequency, frequency.Bounds{
			CurrentAge:     in.CurrentAge,
			LifeExpectancy: in.LifeExpectancy,
			StartAge:       in.StartAge,
			EndAge:         in.EndAge,
		})
		if !d.Available {
			diags = append(diags, model.Warn(model.DiagDurationUnavailable, "no duration in frequency text, age range or life expectancy; lifetime cost is zero"))
		}
		if d.Clamped {
			diags = append(diags, model.Warn(model.DiagDurationNegative, "negative duration clamped to zero"))
		}
		item.Plan = Recurring{Frequency: f, Duration: d}
	}

	return item, diags
}

func classifyIncrement(i int, inc model.AgeIncrement, diags *[]model.Diagnostic) Increment {
	out := Increment{
		StartAge: amount(inc.StartAge, "increment start age", diags),
		EndAge:   amount(inc.EndAge, "increment end age", diags),
	}
	if inc.IsOneTime || frequency.IsOneTime(inc.Frequency) {
		out.OneTime = true
		out.Frequency = frequency.Parse("one-time")
	} else {
		out.Frequency = frequency.Parse(inc.Frequency)
		if !out.Frequency.Recognized {
			*diags = append(*diags, model.Warn(model.DiagFrequencyUnrecognized, "increment %d frequency %q not recognized; assuming once per year", i, inc.Frequency))
		}
	}
	return out
}

func amount(v float64, what string, diags *[]model.Diagnostic) decimal.Decimal {
	d, ok := normalize.Amount(v)
	if !ok {
		*diags = append(*diags, model.Warn(model.DiagNumericCoerced, "%s %v coerced to 0", what, v))
	}
	return d
}
