package model

import "fmt"

// DiagnosticLevel is the severity of a recovered condition.
type DiagnosticLevel string

const (
	LevelInfo DiagnosticLevel = "info"
	LevelWarn DiagnosticLevel = "warn"
)

// DiagnosticCode identifies a recovered condition.
type DiagnosticCode string

const (
	DiagFrequencyUnrecognized DiagnosticCode = "frequency_unrecognized"
	DiagDurationUnavailable   DiagnosticCode = "duration_unavailable"
	DiagDurationNegative      DiagnosticCode = "duration_negative"
	DiagFeeLookupMiss         DiagnosticCode = "fee_lookup_miss"
	DiagFeeLookupError        DiagnosticCode = "fee_lookup_error"
	DiagFeeEstimated          DiagnosticCode = "fee_estimated"
	DiagGeoLookupMiss         DiagnosticCode = "geo_lookup_miss"
	DiagGeoLookupError        DiagnosticCode = "geo_lookup_error"
	DiagNumericCoerced        DiagnosticCode = "numeric_coerced"
	DiagIncrementInvalid      DiagnosticCode = "increment_invalid"
	DiagIncrementsEmpty       DiagnosticCode = "increments_empty"
	DiagManualRangeUnordered  DiagnosticCode = "manual_range_unordered"
	DiagManualValuesMissing   DiagnosticCode = "manual_values_missing"
	DiagOutliersDropped       DiagnosticCode = "outliers_dropped"
)

// Diagnostic records a condition the engine recovered from instead of failing.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Code    DiagnosticCode  `json:"code"`
	Message string          `json:"message"`
}

// Warn builds a warn-level diagnostic.
func Warn(code DiagnosticCode, format string, args ...any) Diagnostic {
	return Diagnostic{Level: LevelWarn, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Info builds an info-level diagnostic.
func Info(code DiagnosticCode, format string, args ...any) Diagnostic {
	return Diagnostic{Level: LevelInfo, Code: code, Message: fmt.Sprintf(format, args...)}
}
