package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.StorageBackend != "local" {
		t.Fatalf("StorageBackend = %q", cfg.StorageBackend)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("RetryMaxAttempts = %d", cfg.RetryMaxAttempts)
	}
	if cfg.MaxUploadBytes != 100<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("RATE_LIMIT_PER_SECOND", "5.5")
	t.Setenv("BREAKER_ENABLED", "false")

	cfg := Load()
	if cfg.APIPort != "9999" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.StorageBackend != "s3" {
		t.Fatalf("StorageBackend = %q", cfg.StorageBackend)
	}
	if cfg.RateLimitPerSecond != 5.5 {
		t.Fatalf("RateLimitPerSecond = %v", cfg.RateLimitPerSecond)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("BreakerEnabled should be false")
	}
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "not-a-number")

	cfg := Load()
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("RetryMaxAttempts = %d, want fallback 3", cfg.RetryMaxAttempts)
	}
}
