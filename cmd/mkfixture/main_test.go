package main

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/carecost/internal/fees"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
	"github.com/gyeh/carecost/internal/parquetread"
)

func TestFeeRowsRoundTrip(t *testing.T) {
	table := fees.DefaultFallbackTable()
	rows := FeeRows(table)
	require.Len(t, rows, table.Len())

	path := filepath.Join(t.TempDir(), "fees.parquet")
	require.NoError(t, parquetread.Write(path, rows))

	r, err := parquetread.Open[model.FeeScheduleRow](path)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, parquetread.ValidateFeeSchema(r.Schema()))
	assert.Equal(t, int64(len(rows)), r.NumRows())

	// Every fixture row survives normalization and matches the table.
	for i := range rows {
		staged, err := normalize.ToStagingFeeRow(&rows[i], uuid.New(), 1, int64(i+1))
		require.NoError(t, err, rows[i].Code)
		want, ok := table.Lookup(staged.Code)
		require.True(t, ok)
		if want.ScheduleA != nil {
			require.NotNil(t, staged.SchedAP50)
			assert.True(t, want.ScheduleA.Low.Equal(*staged.SchedAP50), staged.Code)
		}
	}
}
