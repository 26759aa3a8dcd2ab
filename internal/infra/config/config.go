package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Environment string

	CronSpecScan      string // full notification scan
	CronSpecRecompute string // nightly status recompute sweep
	ScanConcurrency   int

	// Optional ops channel for critical alerts. Both must be set for the
	// channel to be enabled.
	TelegramToken string
	OpsChatID     int64
}

// Load reads configuration from environment variables and a .env file (if
// present). godotenv never overrides variables that are already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecScan = os.Getenv("CRON_SPEC_SCAN")
	if cfg.CronSpecScan == "" {
		cfg.CronSpecScan = "0 7 * * *" // 07:00 daily
	}

	cfg.CronSpecRecompute = os.Getenv("CRON_SPEC_RECOMPUTE")
	if cfg.CronSpecRecompute == "" {
		cfg.CronSpecRecompute = "30 0 * * *" // 00:30 daily, statuses roll over at midnight
	}

	cfg.ScanConcurrency = 8
	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid SCAN_CONCURRENCY: %q", v)
		}
		cfg.ScanConcurrency = n
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if v := os.Getenv("OPS_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPS_CHAT_ID: %w", err)
		}
		cfg.OpsChatID = id
	}

	return cfg, nil
}

// OpsChannelEnabled reports whether critical alerts should be pushed to
// Telegram.
func (c *AppConfig) OpsChannelEnabled() bool {
	return c.TelegramToken != "" && c.OpsChatID != 0
}
