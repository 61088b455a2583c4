package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// clearEnv resets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range GetEnvVars() {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadValidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8002")
	t.Setenv("ADDRESS", "0.0.0.0")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_DIR", "")
	t.Setenv("CATALOG_PATH", "catalog.yaml")
	t.Setenv("CATALOG_RELOAD_INTERVAL", "10m")
	t.Setenv("MATCHER_MODE", "corpus")
	t.Setenv("MAX_GENERATED_MOLECULES", "20")
	t.Setenv("RATE_LIMIT_RATE", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8002" || cfg.Address != "0.0.0.0" {
		t.Errorf("unexpected listen address %s", cfg.ListenAddr())
	}
	if cfg.Env != EnvProduction {
		t.Errorf("Expected env prod, got %s", cfg.Env)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.LogDir != "" {
		t.Errorf("an explicitly empty LOG_DIR disables file logging, got %q", cfg.LogDir)
	}
	if cfg.CatalogReloadInterval != 10*time.Minute || !cfg.ReloadEnabled() {
		t.Errorf("unexpected reload settings %s/%v", cfg.CatalogReloadInterval, cfg.ReloadEnabled())
	}
	if cfg.MatcherMode != "corpus" || cfg.MaxGeneratedMolecules != 20 || cfg.RateLimitRate != 0.5 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.ListenAddr() != "127.0.0.1:8000" {
		t.Errorf("Expected default address 127.0.0.1:8000, got %s", cfg.ListenAddr())
	}
	if cfg.Env != EnvDevelopment {
		t.Errorf("Expected default env dev, got %s", cfg.Env)
	}
	if cfg.LogLevel != "info" || cfg.LogDir != "logs" || cfg.LogRetentionWeeks != 4 {
		t.Errorf("unexpected logging defaults %+v", cfg)
	}
	if cfg.MaxLogFileSize != 100*1024*1024 || cfg.MaxRequestBody != 1024*1024 || cfg.MaxHeaderSize != 1024*1024 {
		t.Errorf("unexpected size defaults %+v", cfg)
	}
	if cfg.CatalogPath != "" || cfg.CatalogReloadInterval != 0 || cfg.ReloadEnabled() {
		t.Errorf("catalog reload should be off by default")
	}
	if cfg.MatcherMode != "pairwise" || cfg.MaxGeneratedMolecules != 100 {
		t.Errorf("unexpected service defaults %+v", cfg)
	}
	if cfg.RateLimitRate != 3 || cfg.RateLimitCapacity != 1000 {
		t.Errorf("unexpected rate limit defaults %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"PORT", "abc", "PORT"},
		{"PORT", "80", "privileged"},
		{"PORT", "70000", "PORT"},
		{"ADDRESS", "8.8.8.8", "public IP"},
		{"ADDRESS", "not-an-ip", "ADDRESS"},
		{"ENV", "qa", "ENV"},
		{"LOG_LEVEL", "trace", "LOG_LEVEL"},
		{"LOG_RETENTION_WEEKS", "53", "LOG_RETENTION_WEEKS"},
		{"LOG_RETENTION_WEEKS", "four", "LOG_RETENTION_WEEKS"},
		{"MAX_LOG_FILE_SIZE", "1024", "MAX_LOG_FILE_SIZE"},
		{"MAX_REQUEST_BODY", "0", "MAX_REQUEST_BODY"},
		{"MAX_HEADER_SIZE", "209715200", "MAX_HEADER_SIZE"},
		{"CATALOG_RELOAD_INTERVAL", "30s", "CATALOG_RELOAD_INTERVAL"},
		{"CATALOG_RELOAD_INTERVAL", "soon", "CATALOG_RELOAD_INTERVAL"},
		{"MATCHER_MODE", "bm25", "MATCHER_MODE"},
		{"MAX_GENERATED_MOLECULES", "0", "MAX_GENERATED_MOLECULES"},
		{"MAX_GENERATED_MOLECULES", "1001", "MAX_GENERATED_MOLECULES"},
		{"RATE_LIMIT_RATE", "-1", "RATE_LIMIT_RATE"},
		{"RATE_LIMIT_CAPACITY", "0", "RATE_LIMIT_CAPACITY"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected an error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	for _, ok := range []string{"127.0.0.1", "::1", "localhost", "0.0.0.0", "10.0.0.5", "192.168.1.10"} {
		if err := validateAddress(ok); err != nil {
			t.Errorf("%s should be accepted: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1.1.1.1", "example.com"} {
		if err := validateAddress(bad); err == nil {
			t.Errorf("%s should be rejected", bad)
		}
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
		hasError bool
	}{
		{"dev", EnvDevelopment, false},
		{"development", EnvDevelopment, false},
		{"staging", EnvStaging, false},
		{"prod", EnvProduction, false},
		{"production", EnvProduction, false},
		{"test", EnvTest, false},
		{"invalid", EnvDevelopment, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			env, err := ParseEnvironment(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for %s, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.input, err)
			}
			if env != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, env)
			}
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	tests := []struct {
		env      Environment
		expected string
	}{
		{EnvDevelopment, "dev"},
		{EnvStaging, "staging"},
		{EnvProduction, "prod"},
		{EnvTest, "test"},
	}

	for _, tt := range tests {
		if got := tt.env.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}
