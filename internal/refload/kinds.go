package refload

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
	"github.com/gyeh/carecost/internal/parquetread"
	embedsql "github.com/gyeh/carecost/internal/sql"
)

// kind binds one reference file type to its Parquet row R, its staging
// row S and the SQL that moves staged rows into the ref schema.
type kind[R parquetread.Row, S model.CopyRow] struct {
	name       string
	validate   func(*parquet.Schema) error
	normalize  func(row *R, batchID uuid.UUID, fileID, rowNum int64) (S, error)
	stageTable pgx.Identifier
	columns    []string
	upsertSQL  string
	// label buckets a normalized row for inspection reports.
	label func(S) string
}

var feeKind = kind[model.FeeScheduleRow, *model.StagingFeeRow]{
	name:       model.KindFeeSchedule,
	validate:   parquetread.ValidateFeeSchema,
	normalize:  normalize.ToStagingFeeRow,
	stageTable: pgx.Identifier{"stage", "procedure_fees"},
	columns:    model.StagingFeeColumns(),
	upsertSQL:  embedsql.UpsertProcedureFees,
	label: func(r *model.StagingFeeRow) string {
		if r.CodeType == nil {
			return "unknown"
		}
		return *r.CodeType
	},
}

var geoKind = kind[model.GeoFactorRow, *model.StagingGeoRow]{
	name:       model.KindGeoFactors,
	validate:   parquetread.ValidateGeoSchema,
	normalize:  normalize.ToStagingGeoRow,
	stageTable: pgx.Identifier{"stage", "geo_factors"},
	columns:    model.StagingGeoColumns(),
	upsertSQL:  embedsql.UpsertGeoFactors,
	label: func(r *model.StagingGeoRow) string {
		if r.State == nil {
			return "unknown"
		}
		return *r.State
	},
}
