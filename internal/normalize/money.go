package normalize

import (
	"math"

	"github.com/shopspring/decimal"
)

// CentsPlaces is the precision every persisted amount is rounded to.
const CentsPlaces = 2

// DollarsToDecimal converts a nullable float64 dollar amount to a nullable
// decimal rounded to cents. NaN and infinities become nil.
func DollarsToDecimal(v *float64) *decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	d := decimal.NewFromFloat(*v).Round(CentsPlaces)
	return &d
}

// Amount converts a caller-supplied float64 into a non-negative decimal.
// ok is false when the value had to be coerced (NaN, infinite or negative),
// in which case the result is zero.
func Amount(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}
