package refload

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
	"github.com/gyeh/carecost/internal/parquetread"
)

// InspectResult is a dry-run report on a reference file.
type InspectResult struct {
	Kind       string
	FilePath   string
	FileSHA256 string
	FileSize   int64
	NumRows    int64
	Sampled    int64
	Rejected   int64
	// Labels counts accepted sampled rows by code type (fee schedules) or
	// state (geographic factors).
	Labels map[string]int64
}

// Inspect validates a reference file and normalizes up to sampleSize rows
// without touching the database.
func Inspect(path, kindName string, sampleSize int64) (*InspectResult, error) {
	switch kindName {
	case model.KindFeeSchedule:
		return inspect(path, feeKind, sampleSize)
	case model.KindGeoFactors:
		return inspect(path, geoKind, sampleSize)
	default:
		return nil, fmt.Errorf("unknown reference kind %q", kindName)
	}
}

func inspect[R parquetread.Row, S model.CopyRow](path string, k kind[R, S], sampleSize int64) (*InspectResult, error) {
	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("hash file: %w", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	reader, err := parquetread.Open[R](path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if err := k.validate(reader.Schema()); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	res := &InspectResult{
		Kind:       k.name,
		FilePath:   path,
		FileSHA256: sha,
		FileSize:   stat.Size(),
		NumRows:    reader.NumRows(),
		Labels:     make(map[string]int64),
	}
	if sampleSize > res.NumRows {
		sampleSize = res.NumRows
	}

	batch := uuid.Nil
	buf := make([]R, 256)
	for res.Sampled < sampleSize {
		n, readErr := reader.Read(buf)
		for i := 0; i < n && res.Sampled < sampleSize; i++ {
			res.Sampled++
			row, err := k.normalize(&buf[i], batch, 0, res.Sampled)
			if err != nil {
				res.Rejected++
				continue
			}
			res.Labels[k.label(row)]++
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read sample rows: %w", readErr)
		}
	}
	return res, nil
}
