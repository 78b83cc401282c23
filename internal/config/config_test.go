package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "3001" {
		t.Errorf("default port = %s, want 3001", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("default host = %s, want 127.0.0.1", cfg.Host)
	}
	if cfg.Addr() != "127.0.0.1:3001" {
		t.Errorf("Addr() = %s", cfg.Addr())
	}
	if cfg.ZipCleanupDelay != 30*time.Second {
		t.Errorf("ZipCleanupDelay = %v, want 30s", cfg.ZipCleanupDelay)
	}
	if cfg.YtdlpPath != "yt-dlp" {
		t.Errorf("YtdlpPath = %s, want yt-dlp", cfg.YtdlpPath)
	}
	if cfg.RecaptchaEnabled() {
		t.Error("recaptcha should be disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "120")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, http://example.com")
	t.Setenv("RECAPTCHA_SECRET_KEY", "real-secret")

	cfg := Load()

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr() = %s", cfg.Addr())
	}
	if cfg.RateLimitRequests != 5 {
		t.Errorf("RateLimitRequests = %d", cfg.RateLimitRequests)
	}
	if cfg.RateLimitWindow != 120*time.Second {
		t.Errorf("RateLimitWindow = %v", cfg.RateLimitWindow)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.RecaptchaEnabled() {
		t.Error("recaptcha should be enabled")
	}
}

func TestValidateClampsNonsense(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "-3")
	t.Setenv("CLEANUP_INTERVAL", "0")
	t.Setenv("ZIP_CLEANUP_DELAY", "-1")

	cfg := Load()

	if cfg.RateLimitRequests != 10 {
		t.Errorf("RateLimitRequests = %d, want clamped 10", cfg.RateLimitRequests)
	}
	if cfg.CleanupInterval != 3600*time.Second {
		t.Errorf("CleanupInterval = %v, want clamped 3600s", cfg.CleanupInterval)
	}
	if cfg.ZipCleanupDelay != 30*time.Second {
		t.Errorf("ZipCleanupDelay = %v, want clamped 30s", cfg.ZipCleanupDelay)
	}
}

func TestPlaceholderSecretCountsAsUnset(t *testing.T) {
	t.Setenv("RECAPTCHA_SECRET_KEY", "your_recaptcha_secret_key_here")

	cfg := Load()
	if cfg.RecaptchaEnabled() {
		t.Error("placeholder secret must leave recaptcha disabled")
	}
}
