package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/rxrecon/internal/model"
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

// Run executes the full load pipeline for one dataset file:
// preflight → stage → merge → cleanup.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, datasetName, filePath string, force, keepStaging bool) (*model.LoadSummary, error) {
	ds, ok := datasets[datasetName]
	if !ok {
		return nil, &PipelineError{Phase: "preflight", Err: fmt.Errorf("unknown dataset %q", datasetName)}
	}

	totalStart := time.Now()

	// Phase 1: Preflight
	log.Info().Str("dataset", ds.name).Str("file", filePath).Msg("starting preflight")
	pf, err := Preflight(ctx, pool, log, ds, filePath, force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.AlreadyLoaded {
		log.Info().
			Int64("load_file_id", pf.LoadFileID).
			Str("sha256", pf.FileSHA256).
			Msg("file already loaded, skipping (use --force to re-load)")
		return &model.LoadSummary{
			Dataset:       pf.Dataset,
			FilePath:      pf.FilePath,
			FileSHA256:    pf.FileSHA256,
			LoadFileID:    pf.LoadFileID,
			IngestBatchID: pf.IngestBatchID.String(),
			DurationTotal: time.Since(totalStart),
		}, nil
	}

	// Phase 2: Stage
	log.Info().Msg("starting staging")
	if err := UpdateStatus(ctx, pool, pf.LoadFileID, "staging"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	stageResult, err := ds.stage(ctx, pool, log, ds, pf)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.LoadFileID, "failed")
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	if err := UpdateStatus(ctx, pool, pf.LoadFileID, "staged"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	// Phase 3: Merge
	log.Info().Msg("starting merge")
	mergeResult, err := Merge(ctx, pool, log, ds, pf)
	if err != nil {
		_ = UpdateStatus(ctx, pool, pf.LoadFileID, "failed")
		return nil, &PipelineError{Phase: "merge", Err: err}
	}

	if err := UpdateStatus(ctx, pool, pf.LoadFileID, "merged"); err != nil {
		return nil, &PipelineError{Phase: "merge", Err: err}
	}

	// Phase 4: Cleanup staging
	if !keepStaging {
		log.Info().Msg("cleaning up staging")
		if err := Cleanup(ctx, pool, log, ds, pf); err != nil {
			log.Warn().Err(err).Msg("staging cleanup failed (non-fatal)")
		}
	}

	summary := &model.LoadSummary{
		Dataset:       pf.Dataset,
		FilePath:      pf.FilePath,
		FileSHA256:    pf.FileSHA256,
		LoadFileID:    pf.LoadFileID,
		IngestBatchID: pf.IngestBatchID.String(),
		RowsRead:      stageResult.RowsRead,
		RowsStaged:    stageResult.RowsStaged,
		RowsRejected:  stageResult.RowsRejected,
		RowsMerged:    mergeResult.RowsMerged,
		DurationStage: stageResult.Duration,
		DurationMerge: mergeResult.Duration,
		DurationTotal: time.Since(totalStart),
	}

	log.Info().
		Str("dataset", summary.Dataset).
		Int64("rows_read", summary.RowsRead).
		Int64("rows_staged", summary.RowsStaged).
		Int64("rows_rejected", summary.RowsRejected).
		Int64("rows_merged", summary.RowsMerged).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("load pipeline complete")

	return summary, nil
}
