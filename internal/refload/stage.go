package refload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/db"
	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/parquetread"
)

const readBatchSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsRead     int64
	RowsStaged   int64
	RowsRejected int64
	Duration     time.Duration
}

// stage streams rows from the Parquet file, normalizes them, and COPY-loads
// them into the kind's staging table through a channel-backed source.
// Rows that fail normalization are logged and counted, not fatal.
func stage[R parquetread.Row, S model.CopyRow](ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, k kind[R, S], pf *PreflightResult) (*StageResult, error) {
	start := time.Now()

	reader, err := parquetread.Open[R](pf.FilePath)
	if err != nil {
		return nil, fmt.Errorf("stage open: %w", err)
	}
	defer reader.Close()

	// Cancelling the copy context stops the producer if COPY fails first.
	copyCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan S, readBatchSize)
	errCh := make(chan error, 1)
	var rowsRead, rowsRejected int64

	go func() {
		defer close(ch)
		buf := make([]R, readBatchSize)
		var rowNum int64

		for {
			n, readErr := reader.Read(buf)
			for i := 0; i < n; i++ {
				rowNum++
				rowsRead++

				row, normErr := k.normalize(&buf[i], pf.LoadBatchID, pf.FileID, rowNum)
				if normErr != nil {
					rowsRejected++
					log.Warn().Err(normErr).Int64("row", rowNum).Msg("row rejected")
					continue
				}

				select {
				case ch <- row:
				case <-copyCtx.Done():
					errCh <- copyCtx.Err()
					return
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				errCh <- fmt.Errorf("read parquet at row %d: %w", rowNum, readErr)
				return
			}
		}
		errCh <- nil
	}()

	rowsStaged, err := pool.CopyFrom(copyCtx, k.stageTable, k.columns, db.NewChannelSource[S](ch))
	if err != nil {
		cancel()
		// Drain so the producer can observe cancellation and exit.
		for range ch {
		}
	}

	prodErr := <-errCh
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}
	if prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}

	dur := time.Since(start)
	log.Info().
		Int64("rows_read", rowsRead).
		Int64("rows_staged", rowsStaged).
		Int64("rows_rejected", rowsRejected).
		Str("duration", dur.String()).
		Float64("rows_per_sec", float64(rowsStaged)/dur.Seconds()).
		Msg("staging complete")

	return &StageResult{
		RowsRead:     rowsRead,
		RowsStaged:   rowsStaged,
		RowsRejected: rowsRejected,
		Duration:     dur,
	}, nil
}
