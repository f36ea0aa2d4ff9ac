package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/gyeh/rxrecon/internal/db"
)

const readBatchSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RowsRead     int64
	RowsStaged   int64
	RowsRejected int64
	Duration     time.Duration
}

type stageFunc func(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, ds *dataset, pf *PreflightResult) (*StageResult, error)

// makeStage builds the staging phase for a row type: stream the parquet
// file, decode and normalize each row, and COPY the survivors into the
// dataset's staging table through a channel-backed CopyFromSource.
// Decode failures reject the row and continue; read and COPY failures
// abort the phase.
func makeStage[T any](decode func(*T) ([]any, error)) stageFunc {
	return func(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, ds *dataset, pf *PreflightResult) (*StageResult, error) {
		start := time.Now()

		f, err := os.Open(pf.FilePath)
		if err != nil {
			return nil, fmt.Errorf("stage open: %w", err)
		}
		defer f.Close()
		stat, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stage stat: %w", err)
		}
		pqf, err := parquet.OpenFile(f, stat.Size())
		if err != nil {
			return nil, fmt.Errorf("stage open parquet: %w", err)
		}
		reader := parquet.NewGenericReader[T](pqf)
		defer reader.Close()

		ch := make(chan []any, readBatchSize)
		errCh := make(chan error, 1)

		var rowsRead, rowsRejected int64

		// Producer goroutine: read parquet → decode → push to channel.
		go func() {
			defer close(ch)
			buf := make([]T, readBatchSize)
			var rowNum int64

			for {
				n, readErr := reader.Read(buf)
				for i := 0; i < n; i++ {
					rowNum++
					rowsRead++

					values, decErr := decode(&buf[i])
					if decErr != nil {
						rowsRejected++
						log.Warn().Err(decErr).Int64("row", rowNum).Msg("row rejected")
						continue
					}

					staged := make([]any, 0, len(values)+3)
					staged = append(staged, pf.IngestBatchID, pf.LoadFileID, rowNum)
					staged = append(staged, values...)

					select {
					case ch <- staged:
					case <-ctx.Done():
						errCh <- ctx.Err()
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

		// Consumer: COPY from channel into the staging table.
		source := db.NewChannelSource(ch)
		rowsStaged, copyErr := pool.CopyFrom(ctx, ds.stagingTable, ds.stagingCols, source)

		// Wait for the producer to finish before inspecting errors.
		prodErr := <-errCh
		if prodErr != nil {
			return nil, fmt.Errorf("stage producer: %w", prodErr)
		}
		if copyErr != nil {
			return nil, fmt.Errorf("stage copy: %w", copyErr)
		}

		dur := time.Since(start)
		log.Info().
			Str("dataset", ds.name).
			Int64("rows_read", rowsRead).
			Int64("rows_staged", rowsStaged).
			Int64("rows_rejected", rowsRejected).
			Str("duration", dur.String()).
			Msg("staging complete")

		return &StageResult{
			RowsRead:     rowsRead,
			RowsStaged:   rowsStaged,
			RowsRejected: rowsRejected,
			Duration:     dur,
		}, nil
	}
}
