package config

import (
	"slices"
	"testing"
)

// clearEnv unsets every variable Load reads for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.Port)
	}
	if cfg.Address != "127.0.0.1" {
		t.Errorf("Expected default address 127.0.0.1, got %s", cfg.Address)
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.DataDir != "reference" {
		t.Errorf("Expected default data dir reference, got %s", cfg.DataDir)
	}
	if !slices.Equal(cfg.ReloadTimeList(), []string{"06:00", "18:00"}) {
		t.Errorf("Expected default reload times, got %v", cfg.ReloadTimeList())
	}
	if cfg.RateLimitCapacity != 100 {
		t.Errorf("Expected default rate limit capacity 100, got %d", cfg.RateLimitCapacity)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ENV", "PROD")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATA_DIR", "/srv/reference")
	t.Setenv("RELOAD_TIMES", "03:30")
	t.Setenv("RATE_LIMIT_RATE", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" {
		t.Errorf("Expected port 8002, got %s", cfg.Port)
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.DataDir != "/srv/reference" {
		t.Errorf("Expected data dir /srv/reference, got %s", cfg.DataDir)
	}
	if !slices.Equal(cfg.ReloadTimeList(), []string{"03:30"}) {
		t.Errorf("Expected reload time 03:30, got %v", cfg.ReloadTimeList())
	}
	if cfg.RateLimitRate != 2.5 {
		t.Errorf("Expected rate 2.5, got %v", cfg.RateLimitRate)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric port", "PORT", "abc"},
		{"privileged port", "PORT", "80"},
		{"port out of range", "PORT", "70000"},
		{"bad address", "ADDRESS", "not-an-ip"},
		{"unknown env", "ENV", "qa"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"retention too long", "LOG_RETENTION_DAYS", "400"},
		{"bad reload time", "RELOAD_TIMES", "25:00"},
		{"empty reload list", "RELOAD_TIMES", ";"},
		{"body limit too large", "MAX_REQUEST_BODY", "104857600"},
		{"negative header limit", "MAX_HEADER_SIZE", "-1"},
		{"zero rate", "RATE_LIMIT_RATE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
