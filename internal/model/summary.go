package model

import "time"

// LoadSummary captures metrics from a single reference file load.
type LoadSummary struct {
	Kind           string
	FilePath       string
	FileSHA256     string
	FileID         int64
	LoadBatchID    string
	RowsRead       int64
	RowsStaged     int64
	RowsRejected   int64
	RowsUpserted   int64
	DurationStage  time.Duration
	DurationUpsert time.Duration
	DurationTotal  time.Duration
	AlreadyLoaded  bool
}

// Reference file kinds, as stored in ref.reference_files.kind.
const (
	KindFeeSchedule = "fee_schedule"
	KindGeoFactors  = "geo_factors"
)

// ReferenceKinds lists the loadable reference file kinds.
var ReferenceKinds = []string{KindFeeSchedule, KindGeoFactors}
