package refload

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/parquetread"
	embedsql "github.com/gyeh/carecost/internal/sql"
)

// UpsertResult holds metrics from the upsert phase.
type UpsertResult struct {
	RowsUpserted int64
	Duration     time.Duration
}

// upsert merges one staged batch into the ref table. Duplicate keys within
// the batch resolve to the last row of the file.
func upsert[R parquetread.Row, S model.CopyRow](ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, k kind[R, S], batchID uuid.UUID) (*UpsertResult, error) {
	start := time.Now()

	tag, err := pool.Exec(ctx, k.upsertSQL, batchID)
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", k.name, err)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_upserted", tag.RowsAffected()).
		Dur("duration", dur).
		Msg("upsert complete")

	return &UpsertResult{RowsUpserted: tag.RowsAffected(), Duration: dur}, nil
}

// cleanup deletes the staged rows of one batch.
func cleanup[R parquetread.Row, S model.CopyRow](ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, k kind[R, S], batchID uuid.UUID) error {
	start := time.Now()

	tag, err := pool.Exec(ctx, "DELETE FROM "+k.stageTable.Sanitize()+" WHERE load_batch_id = $1", batchID)
	if err != nil {
		return fmt.Errorf("delete staging batch: %w", err)
	}

	log.Info().
		Int64("rows_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("staging cleanup complete")
	return nil
}

// UpdateStatus sets the status of a registered reference file.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, fileID int64, status string) error {
	if _, err := pool.Exec(ctx, embedsql.UpdateReferenceStatus, fileID, status); err != nil {
		return fmt.Errorf("update reference file %d status: %w", fileID, err)
	}
	return nil
}
