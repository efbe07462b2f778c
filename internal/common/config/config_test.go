package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.DefaultLanguage != "de" {
		t.Fatalf("DefaultLanguage = %q, want de", cfg.DefaultLanguage)
	}
	if cfg.ReadTimeout != 10 || cfg.WriteTimeout != 10 {
		t.Fatalf("timeouts = %d/%d, want 10/10", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.SessionIdle != 30*time.Minute {
		t.Fatalf("SessionIdle = %s, want 30m", cfg.SessionIdle)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("SHOWROOM_MODEL_BASE_URL", "https://cdn.example.com/models/")
	t.Setenv("SHOWROOM_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Fatal("IsProduction = false, want true")
	}
	if cfg.ModelBaseURL != "https://cdn.example.com/models" {
		t.Fatalf("ModelBaseURL = %q", cfg.ModelBaseURL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsNonPositiveSandboxLimit(t *testing.T) {
	t.Setenv("SHOWROOM_SANDBOX_MAX_BYTES", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero sandbox limit")
	}
}

func TestLoadRejectsZeroSessionIdle(t *testing.T) {
	t.Setenv("SHOWROOM_SESSION_IDLE", "0s")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SHOWROOM_SESSION_IDLE") {
		t.Fatalf("err = %v, want session idle error", err)
	}
}
