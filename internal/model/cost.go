package model

import "github.com/shopspring/decimal"

// CostRange is a low/average/high estimate for a single amount.
// Computed ranges keep Low <= Average <= High; manual ranges are
// echoed as supplied.
type CostRange struct {
	Low     decimal.Decimal `json:"low"`
	Average decimal.Decimal `json:"average"`
	High    decimal.Decimal `json:"high"`
}

// FlatRange returns a range whose three points are all v.
func FlatRange(v decimal.Decimal) CostRange {
	return CostRange{Low: v, Average: v, High: v}
}

// RangeFromBounds builds a range whose average is the midpoint of low and high.
func RangeFromBounds(low, high decimal.Decimal) CostRange {
	return CostRange{Low: low, Average: Midpoint(low, high), High: high}
}

// Add returns the pointwise sum of two ranges.
func (r CostRange) Add(o CostRange) CostRange {
	return CostRange{
		Low:     r.Low.Add(o.Low),
		Average: r.Average.Add(o.Average),
		High:    r.High.Add(o.High),
	}
}

// Round rounds each point to places decimal places.
func (r CostRange) Round(places int32) CostRange {
	return CostRange{
		Low:     r.Low.Round(places),
		Average: r.Average.Round(places),
		High:    r.High.Round(places),
	}
}

// Ordered reports whether Low <= Average <= High.
func (r CostRange) Ordered() bool {
	return r.Low.LessThanOrEqual(r.Average) && r.Average.LessThanOrEqual(r.High)
}

// IsFlat reports whether Low equals High.
func (r CostRange) IsFlat() bool {
	return r.Low.Equal(r.High)
}

// Midpoint returns (a + b) / 2.
func Midpoint(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Div(decimal.NewFromInt(2))
}

// FeeSchedule holds the 50th/75th percentile fee values of one schedule.
type FeeSchedule struct {
	Low  decimal.Decimal `json:"p50"`
	High decimal.Decimal `json:"p75"`
}

// Scale multiplies both percentiles by factor.
func (s FeeSchedule) Scale(factor decimal.Decimal) FeeSchedule {
	return FeeSchedule{Low: s.Low.Mul(factor), High: s.High.Mul(factor)}
}

// FeeOrigin tells where fee percentiles came from.
type FeeOrigin string

const (
	FeeOriginNone      FeeOrigin = ""
	FeeOriginSourced   FeeOrigin = "sourced"
	FeeOriginEstimated FeeOrigin = "estimated"
)

// FeePercentiles is the resolved fee data for one procedure code.
// ScheduleA is the facility/medicare-like schedule, ScheduleB the
// professional/usual-and-customary one; either may be nil.
type FeePercentiles struct {
	Code        string       `json:"code"`
	Description string       `json:"description,omitempty"`
	ScheduleA   *FeeSchedule `json:"schedule_a,omitempty"`
	ScheduleB   *FeeSchedule `json:"schedule_b,omitempty"`
	Origin      FeeOrigin    `json:"origin"`
}

// HasData reports whether at least one schedule is present.
func (p *FeePercentiles) HasData() bool {
	return p != nil && (p.ScheduleA != nil || p.ScheduleB != nil)
}

// GeoFactors are the two multiplicative regional adjustments for a postal code.
type GeoFactors struct {
	PostalCode      string          `json:"postal_code"`
	ScheduleAFactor decimal.Decimal `json:"schedule_a_factor"`
	ScheduleBFactor decimal.Decimal `json:"schedule_b_factor"`
}
