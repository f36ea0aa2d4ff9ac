package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/rxrecon/internal/db"
	"github.com/gyeh/rxrecon/internal/exitcode"
	"github.com/gyeh/rxrecon/internal/ingest"
	"github.com/gyeh/rxrecon/internal/logging"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a claims or reference dataset from a Parquet file",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to Parquet file (required)")
	f.StringVar(&cfg.Dataset, "dataset", "", "Dataset to load: claims, baseline, wholesale, or payers (required)")
	f.BoolVar(&cfg.Force, "force", false, "Re-load even if file SHA already exists")
	f.BoolVar(&cfg.KeepStaging, "keep-staging", false, "Keep staging rows after merge")
	_ = loadCmd.MarkFlagRequired("file")
	_ = loadCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()
	resolveEnv()

	if err := cfg.ValidateLoad(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := ingest.Run(ctx, pool, log, cfg.Dataset, cfg.FilePath, cfg.Force, cfg.KeepStaging)
	if err != nil {
		if pe, ok := err.(*ingest.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("load failed")
			switch pe.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			case "stage":
				os.Exit(exitcode.StageError)
			default:
				os.Exit(exitcode.MergeError)
			}
		}
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.MergeError)
	}

	fmt.Printf("Load complete: %d rows staged, %d rows merged into %s (%.1fs)\n",
		summary.RowsStaged, summary.RowsMerged, summary.Dataset, summary.DurationTotal.Seconds())
	return nil
}
