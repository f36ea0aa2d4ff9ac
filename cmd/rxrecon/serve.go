package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/rxrecon/internal/api"
	"github.com/gyeh/rxrecon/internal/db"
	"github.com/gyeh/rxrecon/internal/exitcode"
	"github.com/gyeh/rxrecon/internal/logging"
	"github.com/gyeh/rxrecon/internal/store"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconciliation dashboard API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfg.Addr, "addr", "", "Listen address (default :8080)")
	f.StringVar(&cfg.JWTSecret, "jwt-secret", "", "HS256 signing secret (or set RXRECON_JWT_SECRET)")
	f.StringVar(&configFile, "config", "", "Optional YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()
	resolveEnv()

	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			log.Error().Err(err).Msg("config load failed")
			os.Exit(exitcode.UsageError)
		}
	}
	if err := cfg.ValidateServe(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	e := api.NewServer(store.NewPG(pool), []byte(cfg.JWTSecret), log)

	log.Info().Str("addr", cfg.Addr).Msg("serving reconciliation API")
	if err := e.Start(cfg.Addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(exitcode.ServeError)
	}
	return nil
}
