// Package config loads the service configuration from config.toml, an
// optional per-environment overlay and WAYBILL_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/waybill/internal/extraction"
	"github.com/JaimeStill/waybill/internal/intake"
	"github.com/JaimeStill/waybill/internal/reconcile"
	"github.com/JaimeStill/waybill/internal/recovery"
	"github.com/JaimeStill/waybill/pkg/auth"
	"github.com/JaimeStill/waybill/pkg/database"
	"github.com/JaimeStill/waybill/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvWaybillEnv             = "WAYBILL_ENV"
	EnvWaybillShutdownTimeout = "WAYBILL_SHUTDOWN_TIMEOUT"
	EnvWaybillVersion         = "WAYBILL_VERSION"
	EnvWaybillLogLevel        = "WAYBILL_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "WAYBILL_DB_HOST",
	Port:            "WAYBILL_DB_PORT",
	Name:            "WAYBILL_DB_NAME",
	User:            "WAYBILL_DB_USER",
	Password:        "WAYBILL_DB_PASSWORD",
	SSLMode:         "WAYBILL_DB_SSL_MODE",
	MaxOpenConns:    "WAYBILL_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "WAYBILL_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "WAYBILL_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "WAYBILL_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "WAYBILL_STORAGE_CONTAINER_NAME",
	ConnectionString: "WAYBILL_STORAGE_CONNECTION_STRING",
	KeyPrefix:        "WAYBILL_STORAGE_KEY_PREFIX",
}

var authEnv = &auth.Env{
	Enabled:  "WAYBILL_AUTH_ENABLED",
	Issuer:   "WAYBILL_AUTH_ISSUER",
	ClientID: "WAYBILL_AUTH_CLIENT_ID",
}

var intakeEnv = &intake.Env{
	Timeout:      "WAYBILL_INTAKE_TIMEOUT",
	WorkspaceDir: "WAYBILL_INTAKE_WORKSPACE_DIR",
	DisableCache: "WAYBILL_INTAKE_DISABLE_CACHE",
}

var recoveryEnv = &recovery.Env{
	Pdftotext: "WAYBILL_RECOVERY_PDFTOTEXT",
	Pdftoppm:  "WAYBILL_RECOVERY_PDFTOPPM",
	Magick:    "WAYBILL_RECOVERY_MAGICK",
	Tesseract: "WAYBILL_RECOVERY_TESSERACT",
	DPI:       "WAYBILL_RECOVERY_DPI",
	Language:  "WAYBILL_RECOVERY_LANGUAGE",
	MaxPages:  "WAYBILL_RECOVERY_MAX_PAGES",
	Workers:   "WAYBILL_RECOVERY_WORKERS",
}

var reconcileEnv = &reconcile.Env{
	Enabled:           "WAYBILL_RECONCILE_ENABLED",
	BaseURL:           "WAYBILL_RECONCILE_BASE_URL",
	APIKey:            "WAYBILL_RECONCILE_API_KEY",
	Model:             "WAYBILL_RECONCILE_MODEL",
	Timeout:           "WAYBILL_RECONCILE_TIMEOUT",
	MaxAlternateChars: "WAYBILL_RECONCILE_MAX_ALTERNATE_CHARS",
}

// Config is the root configuration for the Waybill service.
type Config struct {
	Server          ServerConfig       `toml:"server"`
	Database        database.Config    `toml:"database"`
	Storage         storage.Config     `toml:"storage"`
	API             APIConfig          `toml:"api"`
	Auth            auth.Config        `toml:"auth"`
	Intake          intake.Config      `toml:"intake"`
	Recovery        recovery.Config    `toml:"recovery"`
	Extraction      extraction.Profile `toml:"extraction"`
	Reconcile       reconcile.Config   `toml:"reconcile"`
	ShutdownTimeout string             `toml:"shutdown_timeout"`
	Version         string             `toml:"version"`
	LogLevel        string             `toml:"log_level"`
}

// Env returns the WAYBILL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvWaybillEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Intake.Merge(&overlay.Intake)
	c.Recovery.Merge(&overlay.Recovery)
	c.Extraction.Merge(&overlay.Extraction)
	c.Reconcile.Merge(&overlay.Reconcile)
}

// Finalize applies defaults, environment overrides and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Intake.Finalize(intakeEnv); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	if err := c.Recovery.Finalize(recoveryEnv); err != nil {
		return fmt.Errorf("recovery: %w", err)
	}
	if err := c.finalizeExtraction(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Reconcile.Finalize(reconcileEnv); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	return nil
}

func (c *Config) finalizeExtraction() error {
	profile := extraction.DefaultProfile()
	profile.Merge(&c.Extraction)
	c.Extraction = profile

	if _, err := c.Extraction.ItemPattern(); err != nil {
		return err
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvWaybillShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvWaybillVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvWaybillLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvWaybillEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
