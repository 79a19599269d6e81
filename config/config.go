// Package config loads agent configuration from an optional YAML file with
// environment-variable overrides for the secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. API keys come from the
// environment only and are never read from the YAML file.
type Config struct {
	// TFLAppKey authenticates against the TFL API. Absence is tolerated:
	// calls proceed unauthenticated with an empty app_key header.
	TFLAppKey string `yaml:"-"`
	// OpenAIAPIKey authenticates against the model provider.
	OpenAIAPIKey string `yaml:"-"`

	Model      string   `yaml:"model"`
	BaseURL    string   `yaml:"base_url"`
	Timeout    string   `yaml:"timeout"`
	Localities []string `yaml:"localities"`
	// Retries and MaxTurns are pointers so an explicit zero in the file is
	// distinguishable from an absent key. Both are non-nil after Load.
	Retries   *int    `yaml:"retries"`
	MaxTurns  *int    `yaml:"max_turns"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// Load reads the optional YAML file at path (empty path skips the file),
// applies defaults, then overrides secrets from the environment
// (TFL_API_KEY, OPENAI_API_KEY).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	}
	if *cfg.Retries < 0 {
		return nil, fmt.Errorf("config: retries must not be negative, got %d", *cfg.Retries)
	}
	if *cfg.MaxTurns < 1 {
		return nil, fmt.Errorf("config: max_turns must be positive, got %d", *cfg.MaxTurns)
	}
	cfg.TFLAppKey = os.Getenv("TFL_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.tfl.gov.uk"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if len(c.Localities) == 0 {
		c.Localities = []string{"camden", "liverpool"}
	}
	if c.Retries == nil {
		retries := 2
		c.Retries = &retries
	}
	if c.MaxTurns == nil {
		maxTurns := 20
		c.MaxTurns = &maxTurns
	}
}

// TimeoutDuration parses the per-call timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}
