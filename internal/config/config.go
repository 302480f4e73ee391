package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"librarybookings/internal/availability"
	"librarybookings/internal/models"
)

// DefaultPath is read when no config path is given.
const DefaultPath = "configs/config.yaml"

type Config struct {
	Engine struct {
		PastDays   int    `yaml:"past_days"`
		FutureDays int    `yaml:"future_days"`
		BufferDays int    `yaml:"buffer_days"`
		TimeZone   string `yaml:"time_zone"`
	} `yaml:"engine"`

	// Rules is the default rule set; snapshot rules take precedence.
	Rules models.RuleSet `yaml:"rules"`

	Snapshot struct {
		Path                 string `yaml:"path"`
		WatchIntervalSeconds int    `yaml:"watch_interval_seconds"`
	} `yaml:"snapshot"`

	Report struct {
		Path string `yaml:"path"`
	} `yaml:"report"`

	Monitoring struct {
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		PrometheusPort    int    `yaml:"prometheus_port"`
		LogLevel          string `yaml:"log_level"`
	} `yaml:"monitoring"`
}

// Load reads path, expands ${ENV_VAR} placeholders, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document the same way Load does.
func Parse(data []byte) (*Config, error) {
	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := availability.DefaultConfig()
	if c.Engine.PastDays <= 0 {
		c.Engine.PastDays = def.PastDays
	}
	if c.Engine.FutureDays <= 0 {
		c.Engine.FutureDays = def.FutureDays
	}
	if c.Engine.BufferDays <= 0 {
		c.Engine.BufferDays = def.BufferDays
	}
	if c.Engine.TimeZone == "" {
		c.Engine.TimeZone = "UTC"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "data/snapshot.yaml"
	}
	if c.Snapshot.WatchIntervalSeconds <= 0 {
		c.Snapshot.WatchIntervalSeconds = 30
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Monitoring.LogLevel == "" {
		c.Monitoring.LogLevel = "info"
	}
}

// Validate rejects values the engine cannot use.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Engine.TimeZone); err != nil {
		return fmt.Errorf("engine.time_zone: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Monitoring.PrometheusPort < 0 || c.Monitoring.PrometheusPort > 65535 {
		return fmt.Errorf("monitoring.prometheus_port out of range: %d", c.Monitoring.PrometheusPort)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Engine.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EngineConfig returns the availability engine settings.
func (c *Config) EngineConfig() availability.Config {
	return availability.Config{
		PastDays:   c.Engine.PastDays,
		FutureDays: c.Engine.FutureDays,
		BufferDays: c.Engine.BufferDays,
		Location:   c.Location(),
	}
}

// WatchInterval returns the snapshot polling interval.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Snapshot.WatchIntervalSeconds) * time.Second
}
