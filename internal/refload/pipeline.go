// Package refload loads fee schedule and geographic factor Parquet files
// into the ref schema: preflight → stage (COPY) → upsert → cleanup.
package refload

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/config"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/parquetread"
)

// Pipeline phases, as reported in PipelineError.Phase.
const (
	PhasePreflight = "preflight"
	PhaseStage     = "stage"
	PhaseUpsert    = "upsert"
)

// Reference file statuses.
const (
	StatusPending   = "pending"
	StatusStaging   = "staging"
	StatusStaged    = "staged"
	StatusUpserting = "upserting"
	StatusLoaded    = "loaded"
	StatusFailed    = "failed"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run loads cfg.FilePath as a reference file of kind cfg.Kind.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.LoadSummary, error) {
	switch cfg.Kind {
	case model.KindFeeSchedule:
		return run(ctx, pool, log, cfg, feeKind)
	case model.KindGeoFactors:
		return run(ctx, pool, log, cfg, geoKind)
	default:
		return nil, &PipelineError{Phase: PhasePreflight, Err: fmt.Errorf("unknown reference kind %q", cfg.Kind)}
	}
}

func run[R parquetread.Row, S model.CopyRow](ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config, k kind[R, S]) (*model.LoadSummary, error) {
	totalStart := time.Now()
	log = log.With().Str("kind", k.name).Logger()

	log.Info().Str("file", cfg.FilePath).Msg("starting preflight")
	pf, err := preflight(ctx, pool, log, k, cfg.FilePath, cfg.Force)
	if err != nil {
		return nil, &PipelineError{Phase: PhasePreflight, Err: err}
	}

	summary := &model.LoadSummary{
		Kind:        k.name,
		FilePath:    pf.FilePath,
		FileSHA256:  pf.FileSHA256,
		FileID:      pf.FileID,
		LoadBatchID: pf.LoadBatchID.String(),
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("file_id", pf.FileID).
			Str("sha256", pf.FileSHA256).
			Msg("file already loaded, skipping (use --force to reload)")
		summary.AlreadyLoaded = true
		summary.DurationTotal = time.Since(totalStart)
		return summary, nil
	}

	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, pool, pf.FileID, StatusStaging); err != nil {
		return nil, &PipelineError{Phase: PhaseStage, Err: err}
	}
	stageResult, err := stage(ctx, pool, log, k, pf)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.FileID, StatusFailed)
		if cerr := cleanup(ctx, pool, log, k, pf.LoadBatchID); cerr != nil {
			log.Warn().Err(cerr).Msg("staging cleanup after failure failed")
		}
		return nil, &PipelineError{Phase: PhaseStage, Err: err}
	}
	if err := UpdateStatus(ctx, pool, pf.FileID, StatusStaged); err != nil {
		return nil, &PipelineError{Phase: PhaseStage, Err: err}
	}

	log.Info().Msg("upserting reference rows")
	if err := UpdateStatus(ctx, pool, pf.FileID, StatusUpserting); err != nil {
		return nil, &PipelineError{Phase: PhaseUpsert, Err: err}
	}
	upsertResult, err := upsert(ctx, pool, log, k, pf.LoadBatchID)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.FileID, StatusFailed)
		return nil, &PipelineError{Phase: PhaseUpsert, Err: err}
	}
	if err := UpdateStatus(ctx, pool, pf.FileID, StatusLoaded); err != nil {
		return nil, &PipelineError{Phase: PhaseUpsert, Err: err}
	}

	if !cfg.KeepStaging {
		log.Info().Msg("cleaning up staging")
		if err := cleanup(ctx, pool, log, k, pf.LoadBatchID); err != nil {
			log.Warn().Err(err).Msg("staging cleanup failed (non-fatal)")
		}
	}

	summary.RowsRead = stageResult.RowsRead
	summary.RowsStaged = stageResult.RowsStaged
	summary.RowsRejected = stageResult.RowsRejected
	summary.RowsUpserted = upsertResult.RowsUpserted
	summary.DurationStage = stageResult.Duration
	summary.DurationUpsert = upsertResult.Duration
	summary.DurationTotal = time.Since(totalStart)

	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_staged", summary.RowsStaged).
		Int64("rows_upserted", summary.RowsUpserted).
		Int64("rows_rejected", summary.RowsRejected).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("reference load complete")

	return summary, nil
}
