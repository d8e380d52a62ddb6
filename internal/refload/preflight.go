package refload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
	"github.com/gyeh/carecost/internal/parquetread"
	embedsql "github.com/gyeh/carecost/internal/sql"
)

// PreflightResult holds what the preflight phase resolved about a file.
type PreflightResult struct {
	FilePath   string
	FileSHA256 string
	FileSize   int64
	// FileID is ref.reference_files.file_id, inserted or looked up by
	// (kind, sha256).
	FileID int64
	// LoadBatchID tags this run's staged rows.
	LoadBatchID uuid.UUID
	NumRows     int64
	// AlreadyLoaded is set when the same file was loaded before and force
	// is off.
	AlreadyLoaded bool
}

// preflight hashes the file, validates its schema and registers it.
func preflight[R parquetread.Row, S model.CopyRow](ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, k kind[R, S], filePath string, force bool) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	reader, err := parquetread.Open[R](filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight open: %w", err)
	}
	defer reader.Close()

	if err := k.validate(reader.Schema()); err != nil {
		return nil, fmt.Errorf("preflight validate: %w", err)
	}
	numRows := reader.NumRows()

	fileID, alreadyLoaded, err := registerFile(ctx, pool, k.name, filePath, sha, stat.Size(), force)
	if err != nil {
		return nil, fmt.Errorf("preflight register file: %w", err)
	}

	log.Info().
		Str("file", filepath.Base(filePath)).
		Str("sha256", sha).
		Int64("rows", numRows).
		Int64("file_id", fileID).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	return &PreflightResult{
		FilePath:      filePath,
		FileSHA256:    sha,
		FileSize:      stat.Size(),
		FileID:        fileID,
		LoadBatchID:   uuid.New(),
		NumRows:       numRows,
		AlreadyLoaded: alreadyLoaded,
	}, nil
}

func registerFile(ctx context.Context, pool *pgxpool.Pool, kindName, filePath, sha string, size int64, force bool) (int64, bool, error) {
	var fileID int64
	err := pool.QueryRow(ctx, embedsql.RegisterReferenceFile, kindName, sha, filepath.Base(filePath), size).Scan(&fileID)
	if err == nil {
		return fileID, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("register reference file: %w", err)
	}

	// ON CONFLICT DO NOTHING returned no row: the file is known.
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupReferenceFile, kindName, sha).Scan(&fileID, &status); err != nil {
		return 0, false, fmt.Errorf("lookup existing reference file: %w", err)
	}
	if !force && status == StatusLoaded {
		return fileID, true, nil
	}
	if err := UpdateStatus(ctx, pool, fileID, StatusPending); err != nil {
		return 0, false, fmt.Errorf("reset reference file status: %w", err)
	}
	return fileID, false, nil
}
