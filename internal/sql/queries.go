package sql

import (
	"embed"
)

// Migrations holds the DDL files under migrations/, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_reference_file.sql
var RegisterReferenceFile string

//go:embed queries/lookup_reference_file.sql
var LookupReferenceFile string

//go:embed queries/update_reference_status.sql
var UpdateReferenceStatus string

//go:embed queries/upsert_procedure_fees.sql
var UpsertProcedureFees string

//go:embed queries/upsert_geo_factors.sql
var UpsertGeoFactors string

//go:embed queries/lookup_procedure_fee.sql
var LookupProcedureFee string

//go:embed queries/lookup_geo_factors.sql
var LookupGeoFactors string
