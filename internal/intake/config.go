package intake

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls the upload pipeline.
type Config struct {
	Timeout      string `toml:"timeout"`
	WorkspaceDir string `toml:"workspace_dir"`
	DisableCache bool   `toml:"disable_cache"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Timeout      string
	WorkspaceDir string
	DisableCache string
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

// Merge overwrites non-zero fields from overlay. DisableCache always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.WorkspaceDir != "" {
		c.WorkspaceDir = overlay.WorkspaceDir
	}
	c.DisableCache = overlay.DisableCache
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "3m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.WorkspaceDir != "" {
		if v := os.Getenv(env.WorkspaceDir); v != "" {
			c.WorkspaceDir = v
		}
	}
	if env.DisableCache != "" {
		if v := os.Getenv(env.DisableCache); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.DisableCache = b
			}
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
