package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	JMAFeedURL    string
	DataDir       string
	CronSpecFetch string
	HTTPTimeout   time.Duration

	DryRun    bool
	ForceSend bool
	NoStore   bool

	DiscordWebhookURL  string
	RoleID             string
	RoleMentionEnabled bool

	SchoolNormalTime      string // normal first-period attendance, HH:MM
	SchoolPeriod3Time     string // third-period start
	SchoolAfternoonStart  string // fifth-period (afternoon) start
	MonSatLateClearStatus string // 10:00 all-clear status on Mon/Sat (no official rule)

	LogLevel    string
	Environment string
	MetricsAddr string // empty disables the /metrics endpoint
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.JMAFeedURL = envOrDefault("JMA_FEED_URL", "https://www.data.jma.go.jp/developer/xml/feed/extra.xml")
	cfg.DataDir = envOrDefault("DATA_DIR", "data")
	cfg.CronSpecFetch = envOrDefault("CRON_SPEC_FETCH", "@every 5m")

	timeoutStr := envOrDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %q", timeoutStr)
	}
	cfg.HTTPTimeout = timeout

	cfg.DryRun = parseBool(os.Getenv("DRY_RUN"))
	cfg.ForceSend = parseBool(os.Getenv("FORCE_SEND"))
	cfg.NoStore = parseBool(os.Getenv("NO_STORE"))

	cfg.DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	if cfg.DiscordWebhookURL == "" && !cfg.DryRun {
		return nil, fmt.Errorf("DISCORD_WEBHOOK_URL is not set (required unless DRY_RUN is enabled)")
	}

	cfg.RoleID = os.Getenv("ROLE_ID")
	cfg.RoleMentionEnabled = true
	if v := os.Getenv("ROLE_MENTION_ENABLED"); v != "" {
		cfg.RoleMentionEnabled = parseBool(v)
	}

	cfg.SchoolNormalTime = envOrDefault("SCHOOL_NORMAL_TIME", "08:10")
	cfg.SchoolPeriod3Time = envOrDefault("SCHOOL_PERIOD3_TIME", "10:20")
	cfg.SchoolAfternoonStart = envOrDefault("SCHOOL_AFTERNOON_START", "13:10")
	cfg.MonSatLateClearStatus = envOrDefault("SCHOOL_10AM_CLEAR_MONSAT_STATUS", "自宅学習")

	cfg.LogLevel = strings.ToLower(envOrDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOrDefault("ENVIRONMENT", "development"))
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
