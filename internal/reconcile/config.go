package reconcile

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config configures the OpenAI-compatible reconciliation service.
type Config struct {
	Enabled           bool    `toml:"enabled"`
	BaseURL           string  `toml:"base_url"`
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	Temperature       float64 `toml:"temperature"`
	Timeout           string  `toml:"timeout"`
	MaxPrimaryChars   int     `toml:"max_primary_chars"`
	MaxAlternateChars int     `toml:"max_alternate_chars"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled           string
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           string
	MaxAlternateChars string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxPrimaryChars != 0 {
		c.MaxPrimaryChars = overlay.MaxPrimaryChars
	}
	if overlay.MaxAlternateChars != 0 {
		c.MaxAlternateChars = overlay.MaxAlternateChars
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.MaxPrimaryChars == 0 {
		c.MaxPrimaryChars = 40000
	}
	if c.MaxAlternateChars == 0 {
		c.MaxAlternateChars = 12000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxAlternateChars != "" {
		if v := os.Getenv(env.MaxAlternateChars); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxAlternateChars = n
			}
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxPrimaryChars < 1 || c.MaxAlternateChars < 1 {
		return fmt.Errorf("text size caps must be positive")
	}
	if c.Enabled && c.Model == "" {
		return fmt.Errorf("model required when reconciliation is enabled")
	}
	return nil
}
