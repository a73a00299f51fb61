package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`

	SessionDir string `yaml:"session_dir"`

	RequestTimeout    time.Duration `yaml:"request_timeout"`
	BatchPollInterval time.Duration `yaml:"batch_poll_interval"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	PhotoMaxSizeMB int `yaml:"photo_max_size_mb"`

	MetricsPort string `yaml:"metrics_port"`
}

// Load merges three layers: built-in defaults, the optional YAML config file
// (BAREMA_CONFIG, or config.yaml under the session dir), and environment
// variables, which always win.
func Load() Config {
	cfg := defaults()
	cfg.applyFile(configFilePath(cfg.SessionDir))
	cfg.applyEnv()
	return cfg
}

func defaults() Config {
	return Config{
		APIBaseURL:        "http://localhost:8000/api/v1",
		LogLevel:          "info",
		LogFormat:         "text",
		SessionDir:        defaultSessionDir(),
		RequestTimeout:    30 * time.Second,
		BatchPollInterval: 2 * time.Second,
		RateLimitRPS:      8,
		RateLimitBurst:    16,
		PhotoMaxSizeMB:    5,
	}
}

func defaultSessionDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".barema"
	}
	return filepath.Join(base, "barema")
}

func configFilePath(sessionDir string) string {
	if path := os.Getenv("BAREMA_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(sessionDir, "config.yaml")
}

func (c *Config) applyFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	// A broken config file falls back to defaults instead of failing startup.
	_ = yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.APIBaseURL = mustEnv("BAREMA_API_URL", c.APIBaseURL)
	c.LogLevel = mustEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = mustEnv("LOG_FORMAT", c.LogFormat)
	c.SessionDir = mustEnv("BAREMA_SESSION_DIR", c.SessionDir)
	c.RequestTimeout = mustEnvDuration("BAREMA_REQUEST_TIMEOUT", c.RequestTimeout)
	c.BatchPollInterval = mustEnvDuration("BAREMA_POLL_INTERVAL", c.BatchPollInterval)
	c.RateLimitRPS = mustEnvFloat("BAREMA_RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = mustEnvInt("BAREMA_RATE_LIMIT_BURST", c.RateLimitBurst)
	c.PhotoMaxSizeMB = mustEnvInt("BAREMA_PHOTO_MAX_MB", c.PhotoMaxSizeMB)
	c.MetricsPort = mustEnv("BAREMA_METRICS_PORT", c.MetricsPort)
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
