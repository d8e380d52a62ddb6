// mkfixture writes a fee schedule Parquet file from a fallback table, for
// trying `carecost load` locally.
// Usage: go run ./cmd/mkfixture --out testdata/fees.parquet [--fallback table.yaml]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gyeh/carecost/internal/fees"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/parquetread"
)

func main() {
	out := flag.String("out", "testdata/fees.parquet", "output parquet")
	fallbackPath := flag.String("fallback", "", "fallback table YAML (default: embedded table)")
	flag.Parse()

	table := fees.DefaultFallbackTable()
	if *fallbackPath != "" {
		t, err := fees.LoadFallbackTable(*fallbackPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load fallback table: %v\n", err)
			os.Exit(1)
		}
		table = t
	}

	rows := FeeRows(table)
	if err := parquetread.Write(*out, rows); err != nil {
		fmt.Fprintf(os.Stderr, "write fixture: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d fee schedule rows (table %s) to %s\n", len(rows), table.Version, *out)
}

// FeeRows flattens a fallback table into Parquet rows in code order.
func FeeRows(t *fees.FallbackTable) []model.FeeScheduleRow {
	codes := t.Codes()
	rows := make([]model.FeeScheduleRow, 0, len(codes))
	for _, code := range codes {
		p, ok := t.Lookup(code)
		if !ok {
			continue
		}
		row := model.FeeScheduleRow{Code: p.Code, Description: p.Description}
		if ct := model.InferCodeType(p.Code); ct != "" {
			row.CodeType = &ct
		}
		if p.ScheduleA != nil {
			row.SchedAP50, row.SchedAP75 = f64(p.ScheduleA.Low.InexactFloat64()), f64(p.ScheduleA.High.InexactFloat64())
		}
		if p.ScheduleB != nil {
			row.SchedBP50, row.SchedBP75 = f64(p.ScheduleB.Low.InexactFloat64()), f64(p.ScheduleB.High.InexactFloat64())
		}
		rows = append(rows, row)
	}
	return rows
}

func f64(v float64) *float64 { return &v }
