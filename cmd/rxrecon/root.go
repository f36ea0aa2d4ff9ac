package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/rxrecon/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "rxrecon",
	Short: "Pharmacy claims reconciliation service",
	Long:  "Loads dispensed-claim and reference price data into Postgres and serves the reconciliation dashboard API.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", "", "Postgres connection string (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
}

// resolveEnv fills unset config fields from the environment. Runs after
// godotenv so .env files are honored.
func resolveEnv() {
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("RXRECON_JWT_SECRET")
	}
}
