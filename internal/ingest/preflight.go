package ingest

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

	"github.com/gyeh/rxrecon/internal/normalize"
	embedsql "github.com/gyeh/rxrecon/internal/sql"
)

// PreflightResult holds all context resolved during the preflight phase.
type PreflightResult struct {
	Dataset    string
	FilePath   string
	FileSHA256 string
	FileSize   int64
	// LoadFileID is the registry row for this file, inserted or looked up
	// by (dataset, sha256).
	LoadFileID int64
	// IngestBatchID tags staged rows for merge and cleanup.
	IngestBatchID uuid.UUID
	// AlreadyLoaded is true when this exact file was already merged and
	// force mode is off; the pipeline skips it.
	AlreadyLoaded bool
}

// Preflight hashes the file and registers it, detecting re-loads by
// content digest.
func Preflight(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, ds *dataset, filePath string, force bool) (*PreflightResult, error) {
	start := time.Now()

	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight hash: %w", err)
	}
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("preflight stat: %w", err)
	}

	loadFileID, alreadyLoaded, err := registerLoadFile(ctx, pool, ds.name, filePath, sha, stat.Size(), force)
	if err != nil {
		return nil, fmt.Errorf("preflight register: %w", err)
	}

	log.Info().
		Str("dataset", ds.name).
		Str("file", filepath.Base(filePath)).
		Str("sha256", sha).
		Dur("duration", time.Since(start)).
		Msg("preflight complete")

	return &PreflightResult{
		Dataset:       ds.name,
		FilePath:      filePath,
		FileSHA256:    sha,
		FileSize:      stat.Size(),
		LoadFileID:    loadFileID,
		IngestBatchID: uuid.New(),
		AlreadyLoaded: alreadyLoaded,
	}, nil
}

func registerLoadFile(ctx context.Context, pool *pgxpool.Pool, dataset, filePath, sha string, size int64, force bool) (int64, bool, error) {
	var id int64
	err := pool.QueryRow(ctx, embedsql.RegisterLoadFile,
		dataset, filepath.Base(filePath), sha, size).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("register load file: %w", err)
	}

	// Already registered (ON CONFLICT DO NOTHING returned no rows).
	var status string
	if err := pool.QueryRow(ctx, embedsql.LookupLoadFile, dataset, sha).Scan(&id, &status); err != nil {
		return 0, false, fmt.Errorf("lookup load file: %w", err)
	}
	if !force && status == "merged" {
		return id, true, nil
	}

	// Reset status for re-load.
	if _, err := pool.Exec(ctx, embedsql.UpdateLoadStatus, id, "pending"); err != nil {
		return 0, false, fmt.Errorf("reset load status: %w", err)
	}
	return id, false, nil
}

// UpdateStatus updates the load_files status for a registered file.
func UpdateStatus(ctx context.Context, pool *pgxpool.Pool, loadFileID int64, status string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateLoadStatus, loadFileID, status)
	return err
}
