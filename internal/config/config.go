// Package config holds all taskrouter configuration.
// Every routing and learning threshold lives here rather than as a constant
// in the pipeline: the source material for this design showed the same
// decision points tuned differently over time, so thresholds are config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all taskrouter configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Handler registry source
	Registry RegistryConfig `yaml:"registry"`

	// Classification pipeline tuning
	Routing RoutingConfig `yaml:"routing"`

	// Pattern learning engine tuning
	Learning LearningConfig `yaml:"learning"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RegistryConfig configures where handler definitions are loaded from.
type RegistryConfig struct {
	Path  string `yaml:"path"`  // YAML file with handler definitions
	Watch bool   `yaml:"watch"` // hot-reload on file change
}

// Default returns the production defaults.
func Default() *Config {
	return &Config{
		Name:     "taskrouter",
		Version:  "0.3.0",
		Registry: RegistryConfig{Path: "handlers.yaml"},
		Routing:  DefaultRouting(),
		Learning: DefaultLearning(),
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file, applying defaults for any
// fields the file does not set.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path if it exists, otherwise returns defaults.
func LoadOrDefault(path string) *Config {
	if path == "" {
		return Default()
	}
	if _, err := os.Stat(path); err != nil {
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	if err := c.Routing.Validate(); err != nil {
		return fmt.Errorf("routing config: %w", err)
	}
	if err := c.Learning.Validate(); err != nil {
		return fmt.Errorf("learning config: %w", err)
	}
	return nil
}

// Save writes the config back to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
