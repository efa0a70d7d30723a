// Package config provides configuration loading and management for the
// U-Fund client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Identity IdentityConfig `yaml:"identity"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig configures the U-Fund API endpoint
type ServerConfig struct {
	// URL is the API base URL (default: http://localhost:8080)
	URL string `yaml:"url"`
	// Timeout is the maximum time to wait for API responses
	Timeout time.Duration `yaml:"timeout"`
}

// IdentityConfig configures the acting identity
type IdentityConfig struct {
	// Username is the identity used to establish the session ("admin" for
	// the administrator)
	Username string `yaml:"username"`
}

// NotifyConfig configures the optional need-change feed
type NotifyConfig struct {
	// URL is the NATS server URL (empty = feed disabled)
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Identity: IdentityConfig{
			Username: "",
		},
		Notify: NotifyConfig{
			URL: "",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Server.URL != "" {
		c.Server.URL = other.Server.URL
	}
	if other.Server.Timeout != 0 {
		c.Server.Timeout = other.Server.Timeout
	}

	if other.Identity.Username != "" {
		c.Identity.Username = other.Identity.Username
	}

	if other.Notify.URL != "" {
		c.Notify.URL = other.Notify.URL
	}
}
