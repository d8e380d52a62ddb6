package model

import "github.com/shopspring/decimal"

// AgeIncrement is a sub-interval of a plan with its own frequency.
type AgeIncrement struct {
	StartAge  float64 `json:"start_age"`
	EndAge    float64 `json:"end_age"`
	Frequency string  `json:"frequency"`
	IsOneTime bool    `json:"is_one_time"`
}

// ManualValues is a caller-supplied authoritative cost range.
type ManualValues struct {
	Low     float64 `json:"low"`
	Average float64 `json:"average"`
	High    float64 `json:"high"`
}

// CareItemCostInput is the loose, caller-facing shape of one line item.
// Optional ages are nil when absent.
type CareItemCostInput struct {
	BaseRate       float64        `json:"base_rate"`
	Frequency      string         `json:"frequency"`
	ProcedureCode  string         `json:"procedure_code,omitempty"`
	PostalCode     string         `json:"postal_code,omitempty"`
	CurrentAge     *float64       `json:"current_age,omitempty"`
	LifeExpectancy *float64       `json:"life_expectancy,omitempty"`
	StartAge       *float64       `json:"start_age,omitempty"`
	EndAge         *float64       `json:"end_age,omitempty"`
	AgeIncrements  []AgeIncrement `json:"age_increments,omitempty"`
	IsManualCost   bool           `json:"is_manual_cost,omitempty"`
	ManualValues   *ManualValues  `json:"manual_values,omitempty"`
	CostResources  []float64      `json:"cost_resources,omitempty"`
	Category       string         `json:"category,omitempty"`
}

// StrategyName identifies which calculation rule produced an output.
type StrategyName string

const (
	StrategyOneTime      StrategyName = "one_time"
	StrategyRecurring    StrategyName = "recurring"
	StrategyAgeSegmented StrategyName = "age_segmented"
)

// CareItemCostOutput is the result of one calculation. All amounts are
// non-negative and rounded to cents.
type CareItemCostOutput struct {
	CostRange    CostRange       `json:"cost_range"`
	AnnualCost   decimal.Decimal `json:"annual_cost"`
	LifetimeCost decimal.Decimal `json:"lifetime_cost"`
	IsOneTime    bool            `json:"is_one_time"`
	Strategy     StrategyName    `json:"strategy"`
	Manual       bool            `json:"manual"`
	FeeOrigin    FeeOrigin       `json:"fee_origin,omitempty"`
	GeoAdjusted  bool            `json:"geo_adjusted"`
	Category     string          `json:"category,omitempty"`
	Diagnostics  []Diagnostic    `json:"diagnostics,omitempty"`
}

// HasDiagnostic reports whether a diagnostic with the given code was recorded.
func (o CareItemCostOutput) HasDiagnostic(code DiagnosticCode) bool {
	for _, d := range o.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}
