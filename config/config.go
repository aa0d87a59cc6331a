package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultLandingURL  = "https://asic.gov.au/regulatory-resources/markets/short-selling/short-position-reports-table/"
	DefaultDownloadURL = "https://download.asic.gov.au"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port string

	// Regulator endpoints
	LandingURL  string
	DownloadURL string

	WindowCapacity    int
	FetchTimeout      time.Duration
	RequestsPerSecond int
	ProbeDays         int
	ProbeParallel     bool
	ReportCacheTTL    time.Duration
	SessionTTL        time.Duration
	ReportTimezone    string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first; variables already set
// in the shell take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LandingURL:     getEnv("ASIC_LANDING_URL", DefaultLandingURL),
		DownloadURL:    getEnv("ASIC_DOWNLOAD_URL", DefaultDownloadURL),
		ReportTimezone: getEnv("REPORT_TIMEZONE", "Australia/Sydney"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.WindowCapacity, err = getInt("WINDOW_CAPACITY", 5); err != nil {
		return nil, err
	}
	if cfg.WindowCapacity != 3 && cfg.WindowCapacity != 5 {
		return nil, fmt.Errorf("WINDOW_CAPACITY must be 3 or 5, got %d", cfg.WindowCapacity)
	}

	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = getInt("REQUESTS_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond < 1 {
		return nil, fmt.Errorf("REQUESTS_PER_SECOND must be positive, got %d", cfg.RequestsPerSecond)
	}
	if cfg.ProbeDays, err = getInt("PROBE_DAYS", 10); err != nil {
		return nil, err
	}
	if cfg.ProbeDays < 1 {
		return nil, fmt.Errorf("PROBE_DAYS must be positive, got %d", cfg.ProbeDays)
	}
	if cfg.ProbeParallel, err = getBool("PROBE_PARALLEL", false); err != nil {
		return nil, err
	}
	if cfg.ReportCacheTTL, err = getDuration("REPORT_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 20s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}
