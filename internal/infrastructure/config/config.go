package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// FileEnv names the variable pointing at an optional overlay file.
const FileEnv = "PIPELINE_CONFIG"

// Config holds all application configuration.
type Config struct {
	Pipeline  PipelineConfig
	Consumer  ConsumerConfig
	Watchdog  WatchdogConfig
	Logging   LogConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
}

// PipelineConfig holds the time unit and the producer/supervisor cadences.
// Cadences are counted in units of Tick.
type PipelineConfig struct {
	Tick              time.Duration `envconfig:"PIPELINE_TICK" default:"1s" yaml:"tick"`
	ProducerCadence   int           `envconfig:"PIPELINE_PRODUCER_CADENCE" default:"1" yaml:"producer_cadence"`
	AllocBackoff      int           `envconfig:"PIPELINE_ALLOC_BACKOFF" default:"1" yaml:"alloc_backoff"`
	SupervisorWindow  int           `envconfig:"PIPELINE_SUPERVISOR_WINDOW" default:"2" yaml:"supervisor_window"`
	SupervisorCadence int           `envconfig:"PIPELINE_SUPERVISOR_CADENCE" default:"2" yaml:"supervisor_cadence"`
	PoolCapacity      int           `envconfig:"PIPELINE_POOL_CAPACITY" default:"16" yaml:"pool_capacity"`
}

// ConsumerConfig holds the receive window and escalation thresholds.
type ConsumerConfig struct {
	ReceiveTimeout    int  `envconfig:"CONSUMER_RECEIVE_TIMEOUT" default:"1" yaml:"receive_timeout"`
	AlertThreshold    int  `envconfig:"CONSUMER_ALERT_THRESHOLD" default:"3" yaml:"alert_threshold"`
	RecoveryThreshold int  `envconfig:"CONSUMER_RECOVERY_THRESHOLD" default:"5" yaml:"recovery_threshold"`
	FeedOnTimeout     bool `envconfig:"CONSUMER_FEED_ON_TIMEOUT" default:"false" yaml:"feed_on_timeout"`
}

// WatchdogConfig holds task watchdog settings. Timeout is in units of Tick.
type WatchdogConfig struct {
	Enabled      bool `envconfig:"WATCHDOG_ENABLED" default:"true" yaml:"enabled"`
	Timeout      int  `envconfig:"WATCHDOG_TIMEOUT" default:"5" yaml:"timeout"`
	IdleSlots    int  `envconfig:"WATCHDOG_IDLE_SLOTS" default:"2" yaml:"idle_slots"`
	TriggerPanic bool `envconfig:"WATCHDOG_TRIGGER_PANIC" default:"true" yaml:"trigger_panic"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
	Tag         string `envconfig:"LOG_TAG" default:"" yaml:"tag"`
}

// ServerConfig holds the status HTTP server configuration.
type ServerConfig struct {
	Enabled bool   `envconfig:"SERVER_ENABLED" default:"false" yaml:"enabled"`
	Host    string `envconfig:"STATUS_HOST" default:"127.0.0.1" yaml:"host"`
	Port    string `envconfig:"STATUS_PORT" default:"9090" yaml:"port"`
}

// RateLimitConfig holds status endpoint rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// Load loads configuration from environment variables. When PIPELINE_CONFIG
// names a file, its entries fill in variables the environment leaves unset.
func Load() (*Config, error) {
	if err := applyFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Tick:              time.Second,
			ProducerCadence:   1,
			AllocBackoff:      1,
			SupervisorWindow:  2,
			SupervisorCadence: 2,
			PoolCapacity:      16,
		},
		Consumer: ConsumerConfig{
			ReceiveTimeout:    1,
			AlertThreshold:    3,
			RecoveryThreshold: 5,
			FeedOnTimeout:     false,
		},
		Watchdog: WatchdogConfig{
			Enabled:      true,
			Timeout:      5,
			IdleSlots:    2,
			TriggerPanic: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    "9090",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
	}
}

// Units converts a count of time units into a duration.
func (c *Config) Units(n int) time.Duration {
	return time.Duration(n) * c.Pipeline.Tick
}

// Addr returns the status server listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.Pipeline.Tick <= 0 {
		return fmt.Errorf("%w: tick must be positive, got %s", ErrInvalid, c.Pipeline.Tick)
	}

	positive := []struct {
		name  string
		value int
	}{
		{"producer cadence", c.Pipeline.ProducerCadence},
		{"alloc backoff", c.Pipeline.AllocBackoff},
		{"supervisor window", c.Pipeline.SupervisorWindow},
		{"receive timeout", c.Consumer.ReceiveTimeout},
		{"alert threshold", c.Consumer.AlertThreshold},
		{"recovery threshold", c.Consumer.RecoveryThreshold},
		{"watchdog timeout", c.Watchdog.Timeout},
	}
	for _, p := range positive {
		if p.value < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalid, p.name, p.value)
		}
	}

	if c.Pipeline.SupervisorCadence < 0 {
		return fmt.Errorf("%w: supervisor cadence must not be negative", ErrInvalid)
	}
	if c.Pipeline.PoolCapacity < 0 {
		return fmt.Errorf("%w: pool capacity must not be negative", ErrInvalid)
	}
	if c.Watchdog.IdleSlots < 0 {
		return fmt.Errorf("%w: idle slots must not be negative", ErrInvalid)
	}
	if c.Consumer.AlertThreshold >= c.Consumer.RecoveryThreshold {
		return fmt.Errorf("%w: alert threshold %d must be below recovery threshold %d",
			ErrInvalid, c.Consumer.AlertThreshold, c.Consumer.RecoveryThreshold)
	}
	return nil
}
