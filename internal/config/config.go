// Package config provides centralized configuration loaded from environment
// variables. Command-line flags override these values in cmd/.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pable/go-bball-metrics/internal/fetch"
)

// DefaultBaseURL is the root of the hosted competition pages.
const DefaultBaseURL = "https://hosted.dcd.shared.geniussports.com/SBF/en/competition"

// Config is populated from environment variables.
type Config struct {
	// Storage
	DBPath string

	// Scraping
	BaseURL           string
	UserAgent         string
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	Workers           int

	// Periodic refresh for `serve`, standard five-field cron syntax.
	Schedule string

	// API server
	APIHost          string
	APIPort          int
	CORSAllowOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	AnthropicAPIKey string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath: envOr("BBM_DB_PATH", DefaultDBPath()),

		BaseURL:           strings.TrimRight(envOr("BBM_BASE_URL", DefaultBaseURL), "/"),
		UserAgent:         envOr("BBM_USER_AGENT", fetch.DefaultUserAgent),
		HTTPTimeout:       envDuration("BBM_HTTP_TIMEOUT", fetch.DefaultTimeout),
		RequestsPerSecond: envFloat("BBM_REQUESTS_PER_SECOND", 1),
		Workers:           envInt("BBM_WORKERS", 1),

		Schedule: envOr("BBM_SCHEDULE", "0 6 * * *"),

		APIHost: envOr("API_HOST", "127.0.0.1"),
		APIPort: envInt("API_PORT", 8080),
		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8501",
		}),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "text"),

		AnthropicAPIKey: envOr("ANTHROPIC_API_KEY", ""),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("BBM_WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("BBM_REQUESTS_PER_SECOND must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.APIPort)
	}
	return nil
}

// Addr returns the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// DefaultDBPath is ~/.bbmetrics/metrics.db, or ./metrics.db when the home
// directory cannot be resolved.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "metrics.db"
	}
	return filepath.Join(home, ".bbmetrics", "metrics.db")
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are seconds.
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
