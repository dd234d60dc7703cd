package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %v, want 60s", cfg.PollInterval)
	}
	if cfg.RateLimitPerIP != 100 {
		t.Errorf("RateLimitPerIP = %d, want 100", cfg.RateLimitPerIP)
	}
	if cfg.QAMode {
		t.Error("QAMode should default to false")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GOBUCKET_HTTP_ADDR", ":9999")
	t.Setenv("GOBUCKET_QA_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
	if !cfg.QAMode {
		t.Error("QAMode should be true")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppEnv:       "dev",
			APIURL:       "http://localhost:8080",
			PollInterval: time.Minute,
			HTTPAddr:     ":8080",
			AdminAPIKey:  "admin-123",
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid dev config rejected: %v", err)
	}

	cfg := base()
	cfg.HTTPAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty HTTP address accepted")
	}

	cfg = base()
	cfg.PollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero poll interval accepted")
	}

	cfg = base()
	cfg.APIURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("config with no definitions source accepted")
	}

	cfg = base()
	cfg.AppEnv = "prod"
	if err := cfg.Validate(); err == nil {
		t.Error("default admin key accepted in production")
	}
}
