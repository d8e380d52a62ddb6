package refload_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/costcalc"
	"github.com/gyeh/carecost/internal/db"
	"github.com/gyeh/carecost/internal/dbtest"
	"github.com/gyeh/carecost/internal/fees"
	"github.com/gyeh/carecost/internal/geo"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/parquetread"
	"github.com/gyeh/carecost/internal/refload"
)

var srv *dbtest.Server

func TestMain(m *testing.M) {
	dbtest.Main(m, 15433, &srv)
}

func f64(v float64) *float64 { return &v }
func str(s string) *string    { return &s }

func feeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fees.parquet")
	require.NoError(t, parquetread.Write(path, []model.FeeScheduleRow{
		{Code: "99213", Description: "office  visit", SchedAP50: f64(90), SchedAP75: f64(120), SchedBP50: f64(110), SchedBP75: f64(150)},
		{Code: "97110", Description: "therapeutic exercise", SchedBP50: f64(40), SchedBP75: f64(55)},
		{Code: "E0100", Description: "cane", CodeType: str("HCPCS"), SchedAP50: f64(25)},
		{Code: "99213-25", Description: "office visit, modifier", SchedAP50: f64(90), SchedAP75: f64(120), SchedBP50: f64(110), SchedBP75: f64(150)},
		{Code: "99999", Description: "negative", SchedAP50: f64(-1)},
	}))
	return path
}

func geoFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geo.parquet")
	require.NoError(t, parquetread.Write(path, []model.GeoFactorRow{
		{PostalCode: "10001", SchedAFactor: f64(1.1), SchedBFactor: f64(0.9), City: str("New York"), State: str("ny")},
		{PostalCode: "94110-1234", SchedAFactor: f64(1.3), SchedBFactor: f64(1.25)},
		{PostalCode: "ABCDE", SchedAFactor: f64(1), SchedBFactor: f64(1)},
		{PostalCode: "60601", SchedAFactor: f64(0), SchedBFactor: f64(1)},
	}))
	return path
}

func loadConfig(path, kind string) *config.Config {
	c := config.New()
	c.FilePath = path
	c.Kind = kind
	return c
}

func count(t *testing.T, pool *pgxpool.Pool, sql string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, pool.QueryRow(context.Background(), sql).Scan(&n))
	return n
}

func fileStatus(t *testing.T, pool *pgxpool.Pool, fileID int64) string {
	t.Helper()
	var s string
	require.NoError(t, pool.QueryRow(context.Background(),
		"SELECT status FROM ref.reference_files WHERE file_id = $1", fileID).Scan(&s))
	return s
}

func TestLoadFeeSchedule(t *testing.T) {
	pool := srv.Pool(t)
	ctx := context.Background()

	summary, err := refload.Run(ctx, pool, zerolog.Nop(), loadConfig(feeFixture(t), model.KindFeeSchedule))
	require.NoError(t, err)

	assert.Equal(t, model.KindFeeSchedule, summary.Kind)
	assert.False(t, summary.AlreadyLoaded)
	assert.Len(t, summary.FileSHA256, 64)
	assert.Equal(t, int64(5), summary.RowsRead)
	assert.Equal(t, int64(4), summary.RowsStaged)
	assert.Equal(t, int64(1), summary.RowsRejected)
	assert.Equal(t, int64(3), summary.RowsUpserted)

	assert.Equal(t, int64(3), count(t, pool, "SELECT count(*) FROM ref.procedure_fees"))
	assert.Zero(t, count(t, pool, "SELECT count(*) FROM stage.procedure_fees"))
	assert.Equal(t, refload.StatusLoaded, fileStatus(t, pool, summary.FileID))

	var desc, codeType string
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT description, code_type FROM ref.procedure_fees WHERE code = 'E0100'").Scan(&desc, &codeType))
	assert.Equal(t, "cane", desc)
	assert.Equal(t, "HCPCS", codeType)

	// The modifier row is the last for 99213 and wins.
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT description FROM ref.procedure_fees WHERE code = '99213'").Scan(&desc))
	assert.Equal(t, "office visit, modifier", desc)
}

func TestLoadSkipsAlreadyLoaded(t *testing.T) {
	pool := srv.Pool(t)
	ctx := context.Background()
	cfg := loadConfig(feeFixture(t), model.KindFeeSchedule)

	first, err := refload.Run(ctx, pool, zerolog.Nop(), cfg)
	require.NoError(t, err)

	again, err := refload.Run(ctx, pool, zerolog.Nop(), cfg)
	require.NoError(t, err)
	assert.True(t, again.AlreadyLoaded)
	assert.Equal(t, first.FileID, again.FileID)
	assert.Zero(t, again.RowsRead)

	cfg.Force = true
	forced, err := refload.Run(ctx, pool, zerolog.Nop(), cfg)
	require.NoError(t, err)
	assert.False(t, forced.AlreadyLoaded)
	assert.Equal(t, first.FileID, forced.FileID)
	assert.Equal(t, int64(3), forced.RowsUpserted)
	assert.Equal(t, int64(1), count(t, pool, "SELECT count(*) FROM ref.reference_files"))
}

func TestLoadKeepStaging(t *testing.T) {
	pool := srv.Pool(t)
	cfg := loadConfig(feeFixture(t), model.KindFeeSchedule)
	cfg.KeepStaging = true

	summary, err := refload.Run(context.Background(), pool, zerolog.Nop(), cfg)
	require.NoError(t, err)
	assert.Equal(t, summary.RowsStaged, count(t, pool, "SELECT count(*) FROM stage.procedure_fees"))
}

func TestLoadGeoFactors(t *testing.T) {
	pool := srv.Pool(t)
	ctx := context.Background()

	summary, err := refload.Run(ctx, pool, zerolog.Nop(), loadConfig(geoFixture(t), model.KindGeoFactors))
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.RowsRead)
	assert.Equal(t, int64(2), summary.RowsRejected)
	assert.Equal(t, int64(2), summary.RowsUpserted)

	store := db.NewGeoStore(pool)
	f, err := store.LookupGeoFactors(ctx, "94110")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "1.3", f.ScheduleAFactor.String())
	assert.Equal(t, "1.25", f.ScheduleBFactor.String())

	var state string
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT state FROM ref.geo_factors WHERE postal_code = '10001'").Scan(&state))
	assert.Equal(t, "NY", state)
}

func TestLoadWrongKindFailsPreflight(t *testing.T) {
	pool := srv.Pool(t)

	_, err := refload.Run(context.Background(), pool, zerolog.Nop(), loadConfig(geoFixture(t), model.KindFeeSchedule))
	require.Error(t, err)

	var pe *refload.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, refload.PhasePreflight, pe.Phase)
	assert.Contains(t, err.Error(), "missing required column")
	assert.Zero(t, count(t, pool, "SELECT count(*) FROM ref.reference_files"))
}

func TestLoadUnknownKind(t *testing.T) {
	pool := srv.Pool(t)
	_, err := refload.Run(context.Background(), pool, zerolog.Nop(), loadConfig(feeFixture(t), "bogus"))

	var pe *refload.PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, refload.PhasePreflight, pe.Phase)
}

func TestLoadedDataFeedsEngine(t *testing.T) {
	pool := srv.Pool(t)
	ctx := context.Background()

	_, err := refload.Run(ctx, pool, zerolog.Nop(), loadConfig(feeFixture(t), model.KindFeeSchedule))
	require.NoError(t, err)
	_, err = refload.Run(ctx, pool, zerolog.Nop(), loadConfig(geoFixture(t), model.KindGeoFactors))
	require.NoError(t, err)

	engine := costcalc.NewEngine(
		fees.NewService(db.NewFeeStore(pool), fees.DefaultFallbackTable()),
		geo.NewService(db.NewGeoStore(pool)),
		costcalc.Config{},
		zerolog.Nop(),
		nil,
	)
	out := engine.Calculate(ctx, model.CareItemCostInput{
		BaseRate:      75,
		Frequency:     "one-time",
		ProcedureCode: "99213",
		PostalCode:    "10001",
	})

	// A: 90/120 × 0.9 = 81/108; B: 110/150 × 1.1 = 121/165.
	assert.Equal(t, model.FeeOriginSourced, out.FeeOrigin)
	assert.True(t, out.GeoAdjusted)
	assert.Equal(t, "101", out.CostRange.Low.String())
	assert.Equal(t, "118.75", out.CostRange.Average.String())
	assert.Equal(t, "136.5", out.CostRange.High.String())
	assert.Equal(t, "118.75", out.LifetimeCost.String())
	assert.Empty(t, out.Diagnostics)
}
