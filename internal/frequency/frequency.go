// Package frequency turns free-text care-plan frequency descriptions into
// occurrence-per-year bounds, and derives duration-in-years bounds from the
// same text or from age bounds.
package frequency

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// RatePlaces is the precision derived yearly rates are rounded to.
const RatePlaces = 2

// Unit multipliers, occurrences per year for one occurrence per unit.
var (
	perYear  = decimal.NewFromInt(1)
	perMonth = decimal.NewFromInt(12)
	perWeek  = decimal.RequireFromString("52.1429")
	perDay   = decimal.NewFromInt(365)
)

// Frequency is a parsed occurrence-per-year range.
type Frequency struct {
	Low        decimal.Decimal
	High       decimal.Decimal
	OneTime    bool
	Recognized bool
	Pattern    string
	Original   string
}

// Default is the frequency assumed for unrecognized text.
func Default(text string) Frequency {
	one := decimal.NewFromInt(1)
	return Frequency{Low: one, High: one, Pattern: "default", Original: text}
}

const (
	num   = `(\d+(?:\.\d+)?)`
	sep   = `\s*(?:-|–|—|to)\s*`
	count = `\s*(?:x|times?)?\s*`
	per   = `(?:/\s*|(?:per|a|an|each)\s+)`
	unit  = `(years?|yrs?|months?|mos?|weeks?|wks?|days?)\b`
)

var (
	sentinelPattern   = regexp.MustCompile(`\b(?:one[\s-]?time|once)\b`)
	rangeUnitPattern  = regexp.MustCompile(num + sep + num + count + per + unit)
	countUnitPattern  = regexp.MustCompile(num + count + per + unit)
	onceUnitPattern   = regexp.MustCompile(`\bonce\s*` + per + unit)
	everyRangePattern = regexp.MustCompile(`\bevery\s+` + num + sep + num + `\s*` + unit)
	everyNPattern     = regexp.MustCompile(`\bevery\s+` + num + `\s*` + unit)
	barePattern       = regexp.MustCompile(`^` + num + `(?:` + sep + num + `)?` + count + `$`)
)

type keyword struct {
	name    string
	pattern *regexp.Regexp
	rate    decimal.Decimal
}

// Keywords are checked in order; more specific phrases come first.
var keywords = []keyword{
	{"twice daily", regexp.MustCompile(`\btwice\s+(?:a\s+)?daily\b|\btwice\s+(?:a|per)\s+day\b`), decimal.NewFromInt(730)},
	{"daily", regexp.MustCompile(`\b(?:daily|nightly)\b|\b(?:every|each)\s+(?:day|night)\b|\bonce\s+(?:a|per)\s+day\b`), perDay},
	{"twice weekly", regexp.MustCompile(`\btwice\s+(?:a\s+|per\s+)?week(?:ly)?\b`), decimal.NewFromInt(104)},
	{"biweekly", regexp.MustCompile(`\bbi-?weekly\b|\bfortnightly\b|\bevery\s+other\s+week\b|\bevery\s+2\s+weeks\b`), decimal.NewFromInt(26)},
	{"weekly", regexp.MustCompile(`\bweekly\b|\b(?:every|each)\s+week\b|\bonce\s+(?:a|per)\s+week\b`), perWeek.Round(RatePlaces)},
	{"twice monthly", regexp.MustCompile(`\btwice\s+(?:a\s+|per\s+)?month(?:ly)?\b|\bsemi-?monthly\b`), decimal.NewFromInt(24)},
	{"every other month", regexp.MustCompile(`\bevery\s+other\s+month\b|\bbi-?monthly\b`), decimal.NewFromInt(6)},
	{"monthly", regexp.MustCompile(`\bmonthly\b|\b(?:every|each)\s+month\b|\bonce\s+(?:a|per)\s+month\b`), perMonth},
	{"quarterly", regexp.MustCompile(`\bquarterly\b|\bevery\s+3\s+months\b`), decimal.NewFromInt(4)},
	{"semi-annual", regexp.MustCompile(`\bsemi-?annual(?:ly)?\b|\bbi-?annual(?:ly)?\b|\btwice\s+(?:a|per)\s+year\b|\bevery\s+6\s+months\b`), decimal.NewFromInt(2)},
	{"every other year", regexp.MustCompile(`\bevery\s+other\s+year\b|\bbiennial(?:ly)?\b`), decimal.RequireFromString("0.5")},
	{"annual", regexp.MustCompile(`\bannual(?:ly)?\b|\byearly\b|\b(?:every|each)\s+year\b|\bonce\s+(?:a|per)\s+year\b`), perYear},
}

// IsOneTime reports whether text carries the one-time sentinel ("one-time",
// "one time", "onetime" or "once") and no rate. "once a week", "once/week"
// and "once every 3 months" are recurring.
func IsOneTime(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !sentinelPattern.MatchString(t) {
		return false
	}
	_, ok := parseRate(text, t)
	return !ok
}

// Parse converts text into occurrences per year. It never fails: empty or
// unrecognized text yields Default with Recognized=false.
func Parse(text string) Frequency {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Default(text)
	}
	if f, ok := parseRate(text, t); ok {
		return f
	}
	if sentinelPattern.MatchString(t) {
		return Frequency{Low: decimal.Zero, High: decimal.Zero, OneTime: true, Recognized: true, Pattern: "one-time", Original: text}
	}
	return Default(text)
}

// parseRate runs the rate matchers over the lowercased text t.
func parseRate(text, t string) (Frequency, bool) {
	if m := rangeUnitPattern.FindStringSubmatch(t); m != nil {
		mult := unitMultiplier(m[3])
		return recognized(text, "range per "+unitName(m[3]), rate(m[1], mult), rate(m[2], mult)), true
	}

	if m := countUnitPattern.FindStringSubmatch(t); m != nil {
		mult := unitMultiplier(m[2])
		r := rate(m[1], mult)
		return recognized(text, "count per "+unitName(m[2]), r, r), true
	}

	for _, k := range keywords {
		if k.pattern.MatchString(t) {
			return recognized(text, k.name, k.rate, k.rate), true
		}
	}

	if m := onceUnitPattern.FindStringSubmatch(t); m != nil {
		r := unitMultiplier(m[1]).Round(RatePlaces)
		return recognized(text, "once per "+unitName(m[1]), r, r), true
	}

	if m := everyRangePattern.FindStringSubmatch(t); m != nil {
		low, high := decimal.RequireFromString(m[1]), decimal.RequireFromString(m[2])
		if low.IsPositive() && high.IsPositive() {
			mult := unitMultiplier(m[3])
			// every 2-3 years: the longer interval is the lower rate
			return recognized(text, "every n-m "+unitName(m[3]), mult.Div(high).Round(RatePlaces), mult.Div(low).Round(RatePlaces)), true
		}
	}

	if m := everyNPattern.FindStringSubmatch(t); m != nil {
		n := decimal.RequireFromString(m[1])
		if n.IsPositive() {
			r := unitMultiplier(m[2]).Div(n).Round(RatePlaces)
			return recognized(text, "every n "+unitName(m[2]), r, r), true
		}
	}

	if m := barePattern.FindStringSubmatch(t); m != nil {
		low := rate(m[1], perYear)
		high := low
		if m[2] != "" {
			high = rate(m[2], perYear)
		}
		return recognized(text, "bare count", low, high), true
	}

	return Frequency{}, false
}

func recognized(text, pattern string, low, high decimal.Decimal) Frequency {
	if low.GreaterThan(high) {
		low, high = high, low
	}
	return Frequency{Low: low, High: high, Recognized: true, Pattern: pattern, Original: text}
}

func rate(n string, mult decimal.Decimal) decimal.Decimal {
	return decimal.RequireFromString(n).Mul(mult).Round(RatePlaces)
}

func unitName(u string) string {
	switch {
	case strings.HasPrefix(u, "y"):
		return "year"
	case strings.HasPrefix(u, "m"):
		return "month"
	case strings.HasPrefix(u, "w"):
		return "week"
	default:
		return "day"
	}
}

func unitMultiplier(u string) decimal.Decimal {
	switch unitName(u) {
	case "year":
		return perYear
	case "month":
		return perMonth
	case "week":
		return perWeek
	default:
		return perDay
	}
}
