package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Cleanup deletes staging rows for the given batch.
func Cleanup(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, ds *dataset, pf *PreflightResult) error {
	start := time.Now()

	stmt := fmt.Sprintf("DELETE FROM %s WHERE ingest_batch_id = $1", ds.stagingTable.Sanitize())
	tag, err := pool.Exec(ctx, stmt, pf.IngestBatchID)
	if err != nil {
		return err
	}

	log.Info().
		Str("dataset", ds.name).
		Int64("rows_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("staging cleanup complete")

	return nil
}
