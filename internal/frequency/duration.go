package frequency

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DurationSource tells which input a duration was derived from.
type DurationSource string

const (
	SourceText           DurationSource = "text"
	SourceAgeRange       DurationSource = "age-range"
	SourceLifeExpectancy DurationSource = "life-expectancy"
	SourceNone           DurationSource = "none"
)

// Bounds are the optional ages a duration can be derived from.
type Bounds struct {
	CurrentAge     *float64
	LifeExpectancy *float64
	StartAge       *float64
	EndAge         *float64
}

// Duration is a parsed span in years.
type Duration struct {
	Low       decimal.Decimal
	High      decimal.Decimal
	Source    DurationSource
	Available bool
	// Clamped is set when a negative span was reduced to zero.
	Clamped bool
}

var (
	durationRangePattern = regexp.MustCompile(num + sep + num + `\s*(?:years?|yrs?)\b`)
	durationForPattern   = regexp.MustCompile(`\bfor\s+` + num + `\s*(?:years?|yrs?)\b`)
)

// ParseDuration resolves a duration in years. Explicit text ("for 5 years",
// "5-10 years") wins, then StartAge/EndAge, then LifeExpectancy-CurrentAge.
// With none of them the result is zero with Available=false.
func ParseDuration(text string, b Bounds) Duration {
	t := strings.ToLower(text)

	if low, high, ok := textRange(t); ok {
		return span(SourceText, low, high)
	}
	if m := durationForPattern.FindStringSubmatch(t); m != nil {
		d := decimal.RequireFromString(m[1])
		return span(SourceText, d, d)
	}

	start, end := finite(b.StartAge), finite(b.EndAge)
	if start != nil || end != nil {
		if start == nil {
			start = finite(b.CurrentAge)
		}
		if end == nil {
			end = finite(b.LifeExpectancy)
		}
		if start != nil && end != nil {
			d := decimal.NewFromFloat(*end).Sub(decimal.NewFromFloat(*start))
			return span(SourceAgeRange, d, d)
		}
	}

	current, life := finite(b.CurrentAge), finite(b.LifeExpectancy)
	if current != nil && life != nil {
		d := decimal.NewFromFloat(*life).Sub(decimal.NewFromFloat(*current))
		return span(SourceLifeExpectancy, d, d)
	}

	return Duration{Low: decimal.Zero, High: decimal.Zero, Source: SourceNone}
}

// textRange finds an "N-M years" duration. A range following "every" is an
// interval between occurrences, not a duration, and is skipped.
func textRange(t string) (decimal.Decimal, decimal.Decimal, bool) {
	for _, loc := range durationRangePattern.FindAllStringSubmatchIndex(t, -1) {
		if strings.HasSuffix(strings.TrimSpace(t[:loc[0]]), "every") {
			continue
		}
		return decimal.RequireFromString(t[loc[2]:loc[3]]), decimal.RequireFromString(t[loc[4]:loc[5]]), true
	}
	return decimal.Zero, decimal.Zero, false
}

// Span builds a duration from explicit bounds, clamping negatives to zero.
func Span(low, high decimal.Decimal) Duration {
	return span(SourceAgeRange, low, high)
}

func span(src DurationSource, low, high decimal.Decimal) Duration {
	d := Duration{Source: src, Available: true}
	if low.IsNegative() {
		low, d.Clamped = decimal.Zero, true
	}
	if high.IsNegative() {
		high, d.Clamped = decimal.Zero, true
	}
	if low.GreaterThan(high) {
		low, high = high, low
	}
	d.Low, d.High = low, high
	return d
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
