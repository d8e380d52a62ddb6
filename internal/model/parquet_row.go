package model

// FeeScheduleRow mirrors the Parquet schema of a fee schedule reference file.
// Percentiles are float64 matching the Parquet representation; they are
// converted to decimals during normalization.
type FeeScheduleRow struct {
	Code        string  `parquet:"code"`
	Description string  `parquet:"description"`
	CodeType    *string `parquet:"code_type,optional"`

	// Schedule A: facility / medicare-like
	SchedAP50 *float64 `parquet:"sched_a_p50,optional"`
	SchedAP75 *float64 `parquet:"sched_a_p75,optional"`

	// Schedule B: professional / usual-and-customary
	SchedBP50 *float64 `parquet:"sched_b_p50,optional"`
	SchedBP75 *float64 `parquet:"sched_b_p75,optional"`
}

// GeoFactorRow mirrors the Parquet schema of a geographic factor reference file.
type GeoFactorRow struct {
	PostalCode   string   `parquet:"postal_code"`
	SchedAFactor *float64 `parquet:"sched_a_factor,optional"`
	SchedBFactor *float64 `parquet:"sched_b_factor,optional"`
	City         *string  `parquet:"city,optional"`
	State        *string  `parquet:"state,optional"`
}

// FeeScheduleColumns lists the columns a fee schedule file must carry.
var FeeScheduleColumns = []string{"code", "description"}

// FeePercentileColumns lists the percentile columns; at least one is required.
var FeePercentileColumns = []string{"sched_a_p50", "sched_a_p75", "sched_b_p50", "sched_b_p75"}

// GeoFactorColumns lists the columns a geographic factor file must carry.
var GeoFactorColumns = []string{"postal_code", "sched_a_factor", "sched_b_factor"}
