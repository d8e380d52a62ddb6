package parquetread

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/carecost/internal/model"
)

// ValidateFeeSchema checks that a fee schedule file has the key columns and
// at least one percentile column.
func ValidateFeeSchema(schema *parquet.Schema) error {
	columns := columnSet(schema)
	if err := requireAll(columns, model.FeeScheduleColumns); err != nil {
		return err
	}
	for _, col := range model.FeePercentileColumns {
		if columns[col] {
			return nil
		}
	}
	return fmt.Errorf("no percentile columns found; need at least one of: %s",
		strings.Join(model.FeePercentileColumns, ", "))
}

// ValidateGeoSchema checks that a geographic factor file has every
// required column.
func ValidateGeoSchema(schema *parquet.Schema) error {
	return requireAll(columnSet(schema), model.GeoFactorColumns)
}

func columnSet(schema *parquet.Schema) map[string]bool {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}
	return columns
}

func requireAll(columns map[string]bool, required []string) error {
	for _, col := range required {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}
	return nil
}
