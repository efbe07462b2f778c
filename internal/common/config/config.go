package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `env:"PORT" envDefault:"3000"`
	Environment  string `env:"ENV" envDefault:"development"`
	ReadTimeout  int    `env:"READ_TIMEOUT" envDefault:"10"`
	WriteTimeout int    `env:"WRITE_TIMEOUT" envDefault:"10"`

	DBPath          string        `env:"SHOWROOM_DB_PATH" envDefault:"data/db/showroom.db"`
	DefaultLanguage string        `env:"SHOWROOM_DEFAULT_LANG" envDefault:"de"`
	ModelBaseURL    string        `env:"SHOWROOM_MODEL_BASE_URL" envDefault:"https://brxxmbmolsxalbysvsss.supabase.co/storage/v1/object/public/panels"`
	SandboxMaxBytes int64         `env:"SHOWROOM_SANDBOX_MAX_BYTES" envDefault:"104857600"`
	CORSOrigins     []string      `env:"SHOWROOM_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	PublicDir       string        `env:"SHOWROOM_PUBLIC_DIR" envDefault:"public"`
	SessionIdle     time.Duration `env:"SHOWROOM_SESSION_IDLE" envDefault:"30m"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.ModelBaseURL = strings.TrimRight(cfg.ModelBaseURL, "/")
	if cfg.SandboxMaxBytes <= 0 {
		return nil, fmt.Errorf("SHOWROOM_SANDBOX_MAX_BYTES must be positive, got %d", cfg.SandboxMaxBytes)
	}
	if cfg.SessionIdle <= 0 {
		return nil, fmt.Errorf("SHOWROOM_SESSION_IDLE must be positive, got %s", cfg.SessionIdle)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
