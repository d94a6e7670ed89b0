package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/ibwatch/internal/model"
)

// Config is the root configuration for ibwatch.
type Config struct {
	Database     DatabaseConfig
	Directory    string // "config" or "database"
	Schedule     string // cron spec for the start command
	HTTPTimeout  time.Duration
	RateLimit    RateLimitConfig
	Pipeline     PipelineConfig
	Notification NotificationConfig
	Metrics      MetricsConfig
	Companies    []model.Company
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`   // sqlite file
	URL    string `yaml:"url"`    // postgres connection string
}

// RateLimitConfig controls request spacing per connector type.
type RateLimitConfig struct {
	MinDelay  time.Duration            // minimum gap between requests to the same board type
	Overrides map[string]time.Duration // per-connector overrides
}

// MinDelayFor returns the configured delay for the given connector, falling back to MinDelay.
func (r RateLimitConfig) MinDelayFor(connector string) time.Duration {
	if d, ok := r.Overrides[connector]; ok {
		return d
	}
	return r.MinDelay
}

// PipelineConfig controls how a pass reacts to per-company failures.
type PipelineConfig struct {
	IsolateFailures bool `yaml:"isolate_failures"`
	Concurrency     int  `yaml:"concurrency"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log", "slack" or empty for none
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// MetricsConfig controls the Prometheus endpoint served by start.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

const (
	DirectoryConfig   = "config"
	DirectoryDatabase = "database"

	defaultDBPath      = "ibwatch.db"
	defaultSchedule    = "@every 6h"
	defaultHTTPTimeout = 20 * time.Second
	defaultMinDelay    = time.Second
	defaultConcurrency = 4

	slackWebhookPrefix = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (durations as strings, optional booleans as pointers).
type rawConfig struct {
	Database     DatabaseConfig     `yaml:"database"`
	Directory    string             `yaml:"directory"`
	Schedule     string             `yaml:"schedule"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	RateLimit    rawRateLimitConfig `yaml:"rate_limit"`
	Pipeline     rawPipelineConfig  `yaml:"pipeline"`
	Notification NotificationConfig `yaml:"notification"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Companies    []rawCompany       `yaml:"companies"`
}

type rawHTTPConfig struct {
	Timeout string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
}

type rawPipelineConfig struct {
	IsolateFailures bool `yaml:"isolate_failures"`
	Concurrency     *int `yaml:"concurrency"`
}

type rawCompany struct {
	ID        string              `yaml:"id"`
	Name      string              `yaml:"name"`
	Connector string              `yaml:"connector"`
	Active    *bool               `yaml:"active"` // omitted means active
	Config    model.CompanyConfig `yaml:"config"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	httpTimeout, err := parseDuration("http.timeout", raw.HTTP.Timeout, defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay, defaultMinDelay)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]time.Duration)
	for connector, v := range raw.RateLimit.Overrides {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.overrides[%q]: %w", connector, err)
		}
		overrides[connector] = d
	}

	cfg := &Config{
		Database:    raw.Database,
		Directory:   raw.Directory,
		Schedule:    raw.Schedule,
		HTTPTimeout: httpTimeout,
		RateLimit: RateLimitConfig{
			MinDelay:  minDelay,
			Overrides: overrides,
		},
		Pipeline: PipelineConfig{
			IsolateFailures: raw.Pipeline.IsolateFailures,
			Concurrency:     defaultConcurrency,
		},
		Notification: raw.Notification,
		Metrics:      raw.Metrics,
	}
	if raw.Pipeline.Concurrency != nil {
		cfg.Pipeline.Concurrency = *raw.Pipeline.Concurrency
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDBPath
	}
	if cfg.Directory == "" {
		cfg.Directory = DirectoryConfig
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}

	for _, rc := range raw.Companies {
		c := model.Company{
			ID:        strings.TrimSpace(rc.ID),
			Name:      strings.TrimSpace(rc.Name),
			Connector: strings.TrimSpace(rc.Connector),
			Config:    rc.Config,
			Active:    rc.Active == nil || *rc.Active,
		}
		cfg.Companies = append(cfg.Companies, c)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, value, err)
	}
	return d, nil
}

// validate rejects configs that cannot run. Companies without a board or
// with a connector nobody implements are left for the pipeline to skip.
func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is required when database.driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"postgres\", got %q", cfg.Database.Driver)
	}

	if cfg.Directory != DirectoryConfig && cfg.Directory != DirectoryDatabase {
		return fmt.Errorf("directory must be %q or %q, got %q", DirectoryConfig, DirectoryDatabase, cfg.Directory)
	}

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.Schedule, err)
	}

	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTPTimeout)
	}

	if cfg.Pipeline.Concurrency < 1 {
		return fmt.Errorf("pipeline.concurrency must be at least 1, got %d", cfg.Pipeline.Concurrency)
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\", \"slack\" or empty, got %q", cfg.Notification.Type)
	}

	seen := make(map[string]bool, len(cfg.Companies))
	for i, c := range cfg.Companies {
		if c.ID == "" {
			return fmt.Errorf("companies[%d]: id is required", i)
		}
		if c.Name == "" {
			return fmt.Errorf("companies[%d] (%s): name is required", i, c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("companies[%d]: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = true
	}

	return nil
}
