package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for the fleet monitor.
type Config struct {
	// LogLevel is a zerolog level name (trace..panic).
	LogLevel string `mapstructure:"log_level"`

	// HTTPAddr is the listen address for the observability endpoints.
	HTTPAddr string `mapstructure:"http_addr"`

	// ReportInterval is how often fleet averages are logged.
	ReportInterval time.Duration `mapstructure:"report_interval"`

	// CSVPath is the telemetry file the fleet is loaded from.
	CSVPath string `mapstructure:"csv_path"`

	Sim  SimConfig  `mapstructure:"sim"`
	Feed FeedConfig `mapstructure:"feed"`
}

// SimConfig controls the simulated telemetry updaters.
type SimConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// FeedConfig controls the optional Kafka telemetry feed.
type FeedConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Brokers   []string `mapstructure:"brokers"`
	Topic     string   `mapstructure:"topic"`
	GroupID   string   `mapstructure:"group_id"`
	Workers   int      `mapstructure:"workers"`
	QueueSize int      `mapstructure:"queue_size"`
}

// Default returns a sensible default config for local dev.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		HTTPAddr:       ":8080",
		ReportInterval: 5 * time.Second,
		Sim: SimConfig{
			Enabled:  true,
			Interval: 10 * time.Millisecond,
		},
		Feed: FeedConfig{
			Enabled:   false,
			Brokers:   []string{"localhost:9092"},
			Topic:     "fleet-telemetry",
			GroupID:   "fleetmon",
			Workers:   4,
			QueueSize: 1000,
		},
	}
}

// Load builds a Config from defaults, an optional config file, and
// FLEETMON_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("FLEETMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a subsystem.
func (c *Config) Validate() error {
	if c.ReportInterval <= 0 {
		return errors.New("report_interval must be positive")
	}
	if c.Sim.Enabled && c.Sim.Interval <= 0 {
		return errors.New("sim.interval must be positive")
	}
	if c.Feed.Enabled {
		if len(c.Feed.Brokers) == 0 {
			return errors.New("feed.brokers must not be empty")
		}
		if c.Feed.Topic == "" {
			return errors.New("feed.topic must not be empty")
		}
	}
	return nil
}
