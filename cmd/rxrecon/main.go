package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/gyeh/rxrecon/internal/exitcode"
)

func main() {
	// Best-effort .env load; real environments set variables directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
