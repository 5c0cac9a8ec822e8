// Package config provides configuration loading and threshold resolution
// for admon.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/admon/internal/models"
)

// DefaultThreshold is used for metrics with no configured threshold.
var DefaultThreshold = models.Threshold{
	WarningPct:  20,
	CriticalPct: 40,
	MinBaseline: 10,
}

// Config is the top-level admon configuration.
type Config struct {
	// DefaultThresholds maps metric name to its default threshold.
	DefaultThresholds map[string]models.Threshold `yaml:"default_thresholds"`
	// BaselineWindowDays is the size of the rolling baseline window.
	BaselineWindowDays int `yaml:"baseline_window_days"`
	// MinDaysForPercentageAlerts guards percentage alerts on sparse history.
	MinDaysForPercentageAlerts int `yaml:"min_days_for_percentage_alerts"`

	RateLimit RateLimitConfig `yaml:"rate_limiting"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	History   HistoryConfig   `yaml:"history"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Platform  PlatformConfig  `yaml:"platform"`

	// TenantsFile points at the tenant list (hot-reloadable).
	TenantsFile string `yaml:"tenants_file"`
	// HTTPAddr is the listen address for health/metrics endpoints.
	HTTPAddr string `yaml:"http_addr"`
	// ScheduleInterval is the run interval for `admon serve` (e.g. "24h").
	ScheduleInterval string `yaml:"schedule_interval"`

	Debug bool `yaml:"-"` // set via CLI flag

	// scheduleInterval is the parsed interval (internal use).
	scheduleInterval time.Duration
}

// RateLimitConfig bounds outbound API traffic and retries.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RetryAttempts     int `yaml:"retry_attempts"`
	RetryDelayMs      int `yaml:"retry_delay_ms"`
}

// RetryDelay returns the base retry delay as a duration.
func (c RateLimitConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// LedgerConfig configures the fingerprint store.
type LedgerConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// RetentionDays controls fingerprint pruning.
	RetentionDays int `yaml:"retention_days"`
}

// HistoryConfig configures the ClickHouse metric history store.
type HistoryConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// TrackerConfig configures the external task tracker API.
type TrackerConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	ListID  string `yaml:"list_id"`
}

// PlatformConfig configures the ad-platform query API.
type PlatformConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.DefaultThresholds == nil {
		c.DefaultThresholds = make(map[string]models.Threshold)
	}
	if c.BaselineWindowDays == 0 {
		c.BaselineWindowDays = 7
	}
	if c.MinDaysForPercentageAlerts == 0 {
		c.MinDaysForPercentageAlerts = 3
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 60
	}
	if c.RateLimit.RetryAttempts == 0 {
		c.RateLimit.RetryAttempts = 3
	}
	if c.RateLimit.RetryDelayMs == 0 {
		c.RateLimit.RetryDelayMs = 1000
	}
	if c.Ledger.Backend == "" {
		c.Ledger.Backend = "file"
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = "admon-fingerprints.json"
	}
	if c.Ledger.RetentionDays == 0 {
		c.Ledger.RetentionDays = 90
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.ScheduleInterval == "" {
		c.ScheduleInterval = "24h"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaselineWindowDays < 1 {
		return fmt.Errorf("baseline_window_days must be positive")
	}
	if c.MinDaysForPercentageAlerts < 1 {
		return fmt.Errorf("min_days_for_percentage_alerts must be positive")
	}
	switch c.Ledger.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid ledger backend %q (use file or sqlite)", c.Ledger.Backend)
	}
	interval, err := time.ParseDuration(c.ScheduleInterval)
	if err != nil {
		return fmt.Errorf("invalid schedule_interval %q: %w", c.ScheduleInterval, err)
	}
	c.scheduleInterval = interval
	for metric, th := range c.DefaultThresholds {
		if th.WarningPct < 0 || th.CriticalPct < 0 || th.MinBaseline < 0 {
			return fmt.Errorf("negative threshold for metric %q", metric)
		}
		if th.CriticalPct != 0 && th.WarningPct > th.CriticalPct {
			return fmt.Errorf("warning_pct exceeds critical_pct for metric %q", metric)
		}
	}
	return nil
}

// GetScheduleInterval returns the parsed schedule interval.
func (c *Config) GetScheduleInterval() time.Duration {
	if c.scheduleInterval == 0 {
		return 24 * time.Hour
	}
	return c.scheduleInterval
}

// ResolveThreshold returns the effective threshold for a tenant/metric:
// tenant override merged over the global default for the metric, which is
// itself merged over the built-in default. Zero fields inherit.
func (c *Config) ResolveThreshold(tenant *models.Tenant, metric string) models.Threshold {
	def := DefaultThreshold
	if global, ok := c.DefaultThresholds[metric]; ok {
		def = global.Merge(def)
	}
	if tenant != nil {
		if override, ok := tenant.Thresholds[metric]; ok {
			return override.Merge(def)
		}
	}
	return def
}
