package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// MergeResult holds metrics from the staging→serving merge.
type MergeResult struct {
	RowsMerged int64
	Duration   time.Duration
}

// Merge upserts the batch's staged rows into the dataset's serving
// table. Within a batch the highest source row number wins, and across
// loads the most recent merge wins (last write wins per key).
func Merge(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, ds *dataset, pf *PreflightResult) (*MergeResult, error) {
	start := time.Now()

	tag, err := pool.Exec(ctx, ds.mergeSQL, pf.IngestBatchID)
	if err != nil {
		return nil, fmt.Errorf("merge %s: %w", ds.name, err)
	}

	dur := time.Since(start)
	rows := tag.RowsAffected()

	log.Info().
		Str("dataset", ds.name).
		Int64("rows_merged", rows).
		Str("duration", dur.String()).
		Msg("merge complete")

	return &MergeResult{RowsMerged: rows, Duration: dur}, nil
}
