package model

import "time"

// LoadSummary captures metrics from a single dataset load run.
type LoadSummary struct {
	Dataset       string
	FilePath      string
	FileSHA256    string
	LoadFileID    int64
	IngestBatchID string
	RowsRead      int64
	RowsStaged    int64
	RowsRejected  int64
	RowsMerged    int64
	DurationStage time.Duration
	DurationMerge time.Duration
	DurationTotal time.Duration
}
