package config

import (
	"strings"
	"testing"
	"time"

	"github.com/pable/go-bball-metrics/internal/fetch"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BBM_DB_PATH", "")
	t.Setenv("BBM_WORKERS", "")
	t.Setenv("BBM_HTTP_TIMEOUT", "")
	t.Setenv("BBM_BASE_URL", "")
	t.Setenv("BBM_REQUESTS_PER_SECOND", "")
	t.Setenv("API_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != fetch.DefaultTimeout {
		t.Errorf("HTTPTimeout: got %v", cfg.HTTPTimeout)
	}
	if cfg.Workers != 1 || cfg.RequestsPerSecond != 1 {
		t.Errorf("scrape defaults: workers=%d rps=%v", cfg.Workers, cfg.RequestsPerSecond)
	}
	if !strings.HasSuffix(cfg.DBPath, "metrics.db") {
		t.Errorf("DBPath: got %q", cfg.DBPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BBM_BASE_URL", "http://localhost:9999/comp/")
	t.Setenv("BBM_HTTP_TIMEOUT", "15")
	t.Setenv("BBM_WORKERS", "4")
	t.Setenv("BBM_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("API_PORT", "9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9999/comp" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout: got %v", cfg.HTTPTimeout)
	}
	if cfg.Workers != 4 || cfg.RequestsPerSecond != 0.5 {
		t.Errorf("workers=%d rps=%v", cfg.Workers, cfg.RequestsPerSecond)
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "http://b.test" {
		t.Errorf("CORS origins: %v", cfg.CORSAllowOrigins)
	}
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr: got %q", cfg.Addr())
	}
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	t.Setenv("BBM_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero workers")
	}
}
