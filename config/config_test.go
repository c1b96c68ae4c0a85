package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arc/portal-engine/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.Addr != ":8080" {
		t.Errorf("unexpected default addr %q", cfg.Addr)
	}
	if cfg.Database != "portal.db" {
		t.Errorf("unexpected default database %q", cfg.Database)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("expected default CORS origins")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	raw := []byte("addr: \":9090\"\ncors:\n  allowed_origins:\n    - https://portal.example.com\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.Database != "portal.db" {
		t.Errorf("unset fields keep defaults, got %q", cfg.Database)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://portal.example.com" {
		t.Errorf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("a misnamed config path must fail loudly")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("addr: [:::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected parse error")
	}
}
