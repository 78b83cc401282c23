package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const recaptchaPlaceholder = "your_recaptcha_secret_key_here"

// Config holds all server settings in correct types
type Config struct {
	Port              string
	Host              string
	DownloadDir       string
	TempDir           string
	MaxFileSize       int64
	CleanupInterval   time.Duration
	ZipCleanupDelay   time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
	RecaptchaSecret   string // empty means verification is disabled
	YtdlpPath         string
}

// Load: The only way to get config in the app
func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", "3001"),
		Host:              getEnv("HOST", "127.0.0.1"),
		DownloadDir:       getEnv("DOWNLOAD_DIR", "./downloads"),
		TempDir:           getEnv("TEMP_DIR", "./tmp"),
		MaxFileSize:       int64(getEnvAsInt("MAX_FILE_SIZE", 100*1024*1024)),
		CleanupInterval:   time.Duration(getEnvAsInt("CLEANUP_INTERVAL", 3600)) * time.Second,
		ZipCleanupDelay:   time.Duration(getEnvAsInt("ZIP_CLEANUP_DELAY", 30)) * time.Second,
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
		CORSOrigins:       splitOrigins(getEnv("CORS_ORIGINS", "*")),
		RecaptchaSecret:   readSecret(),
		YtdlpPath:         getEnv("YTDLP_PATH", "yt-dlp"),
	}

	// 🛡️ Post-load Validation
	validate(cfg)

	return cfg
}

// Addr is the listen address for http.ListenAndServe
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) RecaptchaEnabled() bool {
	return c.RecaptchaSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	str := getEnv(key, "")
	if val, err := strconv.Atoi(str); err == nil {
		return val
	}
	return fallback
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// The placeholder shipped in .env.example counts as unset.
func readSecret() string {
	key := getEnv("RECAPTCHA_SECRET_KEY", "")
	if key == recaptchaPlaceholder {
		return ""
	}
	return key
}

// validate ensures the server won't crash due to misconfiguration
func validate(cfg *Config) {
	if cfg.RateLimitRequests < 1 {
		log.Println("⚠️ Warning: RATE_LIMIT_REQUESTS must be at least 1. Resetting to 10.")
		cfg.RateLimitRequests = 10
	}
	if cfg.RateLimitWindow <= 0 {
		log.Println("⚠️ Warning: RATE_LIMIT_WINDOW must be positive. Resetting to 60s.")
		cfg.RateLimitWindow = 60 * time.Second
	}
	if cfg.CleanupInterval <= 0 {
		log.Println("⚠️ Warning: CLEANUP_INTERVAL must be positive. Resetting to 3600s.")
		cfg.CleanupInterval = 3600 * time.Second
	}
	if cfg.ZipCleanupDelay <= 0 {
		log.Println("⚠️ Warning: ZIP_CLEANUP_DELAY must be positive. Resetting to 30s.")
		cfg.ZipCleanupDelay = 30 * time.Second
	}
	if cfg.MaxFileSize <= 0 {
		log.Println("⚠️ Warning: MAX_FILE_SIZE must be positive. Resetting to 100MB.")
		cfg.MaxFileSize = 100 * 1024 * 1024
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
}
