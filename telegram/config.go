package telegram

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the update-source and transport options the spec enumerates:
// polling timeout/limit, webhook listen address and path, backoff bounds,
// and the API base URL.
type Config struct {
	Token                 string `yaml:"token"`
	PollingTimeoutSeconds int    `yaml:"polling_timeout_seconds"`
	PollingLimit          int    `yaml:"polling_limit"`
	WebhookAddr           string `yaml:"webhook_addr"`
	WebhookPath           string `yaml:"webhook_path"`
	BackoffBaseMs         int    `yaml:"backoff_base_ms"`
	BackoffCapMs          int    `yaml:"backoff_cap_ms"`
	BaseURL               string `yaml:"base_url"`
}

// DefaultConfig returns a Config with every default the spec names applied.
func DefaultConfig() Config {
	return Config{
		PollingTimeoutSeconds: 30,
		PollingLimit:          100,
		BackoffBaseMs:         1000,
		BackoffCapMs:          30000,
		BaseURL:               "https://api.telegram.org",
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig and validates
// the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("canoe/telegram: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("canoe/telegram: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the ranges the spec documents for polling parameters.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("canoe/telegram: token is required")
	}
	if c.PollingTimeoutSeconds < 1 || c.PollingTimeoutSeconds > 60 {
		return fmt.Errorf("canoe/telegram: polling_timeout_seconds must be in [1,60], got %d", c.PollingTimeoutSeconds)
	}
	if c.PollingLimit < 1 || c.PollingLimit > 100 {
		return fmt.Errorf("canoe/telegram: polling_limit must be in [1,100], got %d", c.PollingLimit)
	}
	if c.BackoffBaseMs <= 0 || c.BackoffCapMs < c.BackoffBaseMs {
		return fmt.Errorf("canoe/telegram: backoff_base_ms must be positive and not exceed backoff_cap_ms")
	}
	return nil
}
