package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StagingFeeRow is the normalized, DB-ready representation of a fee schedule row.
// Percentiles are nullable decimals rounded to cents.
type StagingFeeRow struct {
	LoadBatchID     uuid.UUID
	FileID          int64
	SourceRowNumber int64

	Code        string
	CodeRaw     string
	Description string
	CodeType    *string

	SchedAP50 *decimal.Decimal
	SchedAP75 *decimal.Decimal
	SchedBP50 *decimal.Decimal
	SchedBP75 *decimal.Decimal
}

// StagingFeeColumns returns the ordered column names for COPY into stage.procedure_fees.
func StagingFeeColumns() []string {
	return []string{
		"load_batch_id",
		"file_id",
		"source_row_number",
		"code",
		"code_raw",
		"description",
		"code_type",
		"sched_a_p50",
		"sched_a_p75",
		"sched_b_p50",
		"sched_b_p75",
	}
}

// CopyValues returns the row values in the same order as StagingFeeColumns().
func (r *StagingFeeRow) CopyValues() []any {
	return []any{
		r.LoadBatchID,
		r.FileID,
		r.SourceRowNumber,
		r.Code,
		r.CodeRaw,
		r.Description,
		r.CodeType,
		numericArg(r.SchedAP50),
		numericArg(r.SchedAP75),
		numericArg(r.SchedBP50),
		numericArg(r.SchedBP75),
	}
}

// StagingGeoRow is the normalized, DB-ready representation of a geographic factor row.
type StagingGeoRow struct {
	LoadBatchID     uuid.UUID
	FileID          int64
	SourceRowNumber int64

	PostalCode   string
	SchedAFactor decimal.Decimal
	SchedBFactor decimal.Decimal
	City         *string
	State        *string
}

// StagingGeoColumns returns the ordered column names for COPY into stage.geo_factors.
func StagingGeoColumns() []string {
	return []string{
		"load_batch_id",
		"file_id",
		"source_row_number",
		"postal_code",
		"sched_a_factor",
		"sched_b_factor",
		"city",
		"state",
	}
}

// CopyValues returns the row values in the same order as StagingGeoColumns().
func (r *StagingGeoRow) CopyValues() []any {
	return []any{
		r.LoadBatchID,
		r.FileID,
		r.SourceRowNumber,
		r.PostalCode,
		r.SchedAFactor.InexactFloat64(),
		r.SchedBFactor.InexactFloat64(),
		r.City,
		r.State,
	}
}

// numericArg converts a nullable cents-rounded decimal to float64, which the
// pgx numeric codec encodes in binary COPY without a custom type.
func numericArg(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// CopyRow is implemented by staging rows that can feed a COPY source.
type CopyRow interface {
	CopyValues() []any
}
