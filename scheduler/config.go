package scheduler

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains engine configuration.
type Config struct {
	// Timezone is the IANA name of the zone the default system clock
	// operates in. Ignored when an explicit clock is supplied.
	Timezone string `json:"timezone" yaml:"timezone"`

	// ShutdownTimeout bounds how long Stop waits for in-flight runs.
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdown_timeout"`

	// FailFast makes Start fail when any job fails to activate, instead of
	// reporting the failure and starting the remaining jobs.
	FailFast bool `json:"failFast" yaml:"fail_fast"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Timezone:        "UTC",
		ShutdownTimeout: 30 * time.Second,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Timezone == "" {
		return fmt.Errorf("%w: timezone must not be empty", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidConfig, c.Timezone)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdown_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a YAML config file, filling unset fields from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
