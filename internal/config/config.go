package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/rxrecon/internal/ingest"
)

// Config holds all runtime configuration for an rxrecon run.
type Config struct {
	DSN       string
	Addr      string
	JWTSecret string
	LogFormat string // "text" or "json"

	// Loader flags
	FilePath    string
	Dataset     string
	Force       bool
	KeepStaging bool
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Addr      string `yaml:"addr"`
	LogFormat string `yaml:"log_format"`
}

// LoadFromFile reads a YAML config file and merges its values into
// Config. Flags and environment take precedence, so only unset fields
// are filled in.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if c.Addr == "" {
		c.Addr = yc.Addr
	}
	if c.LogFormat == "" {
		c.LogFormat = yc.LogFormat
	}
	return nil
}

// ValidateLoad checks the fields the load command needs.
func (c *Config) ValidateLoad() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	if !ingest.KnownDataset(c.Dataset) {
		return fmt.Errorf("unknown dataset %q (want one of %s)", c.Dataset, ingest.DatasetNames())
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}

// ValidateServe checks the fields the serve command needs.
func (c *Config) ValidateServe() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("--jwt-secret or RXRECON_JWT_SECRET is required")
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	return nil
}
