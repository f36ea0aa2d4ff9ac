package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_FillsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rxrecon.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9090\"\nlog_format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &Config{}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Addr != ":9090" || c.LogFormat != "json" {
		t.Errorf("addr=%q logFormat=%q", c.Addr, c.LogFormat)
	}
}

func TestLoadFromFile_FlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rxrecon.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &Config{Addr: ":7070"}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Addr != ":7070" {
		t.Errorf("addr = %q, want the flag value to survive", c.Addr)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	c := &Config{}
	if err := c.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [:::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadFromFile(path); err == nil {
		t.Error("malformed yaml should error")
	}
}

func TestValidateLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "claims.parquet")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &Config{FilePath: file, Dataset: "claims", DSN: "postgres://localhost/rx"}
	if err := c.ValidateLoad(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	bad := *c
	bad.FilePath = ""
	if err := bad.ValidateLoad(); err == nil {
		t.Error("missing file path should be rejected")
	}

	bad = *c
	bad.Dataset = "invoices"
	if err := bad.ValidateLoad(); err == nil {
		t.Error("unknown dataset should be rejected")
	}

	bad = *c
	bad.DSN = ""
	if err := bad.ValidateLoad(); err == nil {
		t.Error("missing dsn should be rejected")
	}
}

func TestValidateServe(t *testing.T) {
	c := &Config{DSN: "postgres://localhost/rx", JWTSecret: "s3cret"}
	if err := c.ValidateServe(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if c.Addr != ":8080" {
		t.Errorf("addr = %q, want default :8080", c.Addr)
	}

	bad := &Config{JWTSecret: "s3cret"}
	if err := bad.ValidateServe(); err == nil {
		t.Error("missing dsn should be rejected")
	}

	bad = &Config{DSN: "postgres://localhost/rx"}
	if err := bad.ValidateServe(); err == nil {
		t.Error("missing jwt secret should be rejected")
	}
}
