package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/waybill/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
log_level = "debug"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "waybill"
user = "waybill"
password = "waybill"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "waybill"
connection_string = "DefaultEndpointsProtocol=http;AccountName=waybillstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/waybillstore;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[intake]
timeout = "2m"

[recovery]
dpi = 200
language = "deu"

[extraction]
product_anchor = "Product|Material"

[reconcile]
model = "gpt-4o-mini"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[reconcile]
enabled = true
base_url = "http://llm.internal/v1"
`

const minimalConfig = `
[database]
name = "waybill"
user = "waybill"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func loadFrom(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "waybill" {
		t.Errorf("storage container: got %s, want waybill", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Intake.Timeout != "2m" {
		t.Errorf("intake timeout: got %s, want 2m", cfg.Intake.Timeout)
	}
	if cfg.Recovery.DPI != 200 {
		t.Errorf("recovery dpi: got %d, want 200", cfg.Recovery.DPI)
	}
	if cfg.Recovery.Language != "deu" {
		t.Errorf("recovery language: got %s, want deu", cfg.Recovery.Language)
	}
	if cfg.Reconcile.Enabled {
		t.Error("reconcile should be disabled by default")
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("WAYBILL_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if !cfg.Reconcile.Enabled {
		t.Error("reconcile should be enabled by overlay")
	}
	if cfg.Reconcile.BaseURL != "http://llm.internal/v1" {
		t.Errorf("reconcile base_url: got %s", cfg.Reconcile.BaseURL)
	}
	if cfg.Reconcile.Model != "gpt-4o-mini" {
		t.Errorf("reconcile model: got %s, want gpt-4o-mini (from base)", cfg.Reconcile.Model)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	t.Setenv("WAYBILL_VERSION", "2.0.0")
	t.Setenv("WAYBILL_SERVER_PORT", "3000")
	t.Setenv("WAYBILL_INTAKE_TIMEOUT", "45s")
	t.Setenv("WAYBILL_RECOVERY_WORKERS", "2")
	t.Setenv("WAYBILL_STORAGE_KEY_PREFIX", "tenant")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Intake.Timeout != "45s" {
		t.Errorf("intake timeout: got %s, want 45s", cfg.Intake.Timeout)
	}
	if cfg.Recovery.Workers != 2 {
		t.Errorf("recovery workers: got %d, want 2", cfg.Recovery.Workers)
	}
	if cfg.Storage.KeyPrefix != "tenant" {
		t.Errorf("storage key_prefix: got %s, want tenant", cfg.Storage.KeyPrefix)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("WAYBILL_DB_NAME", "waybill")
	t.Setenv("WAYBILL_DB_USER", "waybill_app")
	t.Setenv("WAYBILL_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.User != "waybill_app" {
		t.Errorf("db user from env: got %s, want waybill_app", cfg.Database.User)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `server = {port = }`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestDefaults(t *testing.T) {
	cfg := loadFrom(t, minimalConfig)

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"shutdown_timeout", cfg.ShutdownTimeout, "30s"},
		{"log_level", cfg.LogLevel, "info"},
		{"pagination default", cfg.API.Pagination.DefaultPageSize, 20},
		{"pagination max", cfg.API.Pagination.MaxPageSize, 100},
		{"openapi title", cfg.API.OpenAPI.Title, "Waybill API"},
		{"intake timeout", cfg.Intake.Timeout, "3m"},
		{"recovery dpi", cfg.Recovery.DPI, 300},
		{"recovery language", cfg.Recovery.Language, "eng+deu"},
		{"extraction profile", cfg.Extraction.Name, "default"},
		{"extraction product anchor", cfg.Extraction.ProductAnchor, "Product"},
		{"reconcile base_url", cfg.Reconcile.BaseURL, "https://api.openai.com/v1"},
		{"auth enabled", cfg.Auth.Enabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestExtractionProfileOverride(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if cfg.Extraction.ProductAnchor != "Product|Material" {
		t.Errorf("product anchor: got %s, want Product|Material", cfg.Extraction.ProductAnchor)
	}
	if cfg.Extraction.PackagingAnchor == "" {
		t.Error("packaging anchor should keep its default")
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	t.Setenv("WAYBILL_ENV", "production")
	cfg := loadFrom(t, baseConfig)

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"upper case", "WARN", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"invalid falls back to info", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LogLevel: tt.level}
			if got := cfg.Level(); got != tt.want {
				t.Errorf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	cfg := loadFrom(t, baseConfig)

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	t.Setenv("WAYBILL_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("WAYBILL_PAGINATION_MAX_PAGE_SIZE", "200")
	cfg := loadFrom(t, baseConfig)

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("pagination default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("pagination max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 50MB", "50MB", 50 * 1024 * 1024},
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
		{"empty falls back to 50MB", "", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxUploadSizeEnvOverride(t *testing.T) {
	t.Setenv("WAYBILL_API_MAX_UPLOAD_SIZE", "100MB")
	cfg := loadFrom(t, baseConfig)

	want := int64(100 * 1024 * 1024)
	if got := cfg.API.MaxUploadSizeBytes(); got != want {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, want)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  minimalConfig + "\n[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid read_timeout",
			config:  minimalConfig + "\n[server]\nread_timeout = \"bad\"\n",
			wantErr: "invalid read_timeout",
		},
		{
			name:    "invalid log_level",
			config:  "log_level = \"loud\"\n" + minimalConfig,
			wantErr: "invalid log_level",
		},
		{
			name:    "auth enabled without issuer",
			config:  minimalConfig + "\n[auth]\nenabled = true\nclient_id = \"waybill\"\n",
			wantErr: "issuer required",
		},
		{
			name:    "invalid intake timeout",
			config:  minimalConfig + "\n[intake]\ntimeout = \"-1s\"\n",
			wantErr: "timeout must be positive",
		},
		{
			name:    "invalid product anchor",
			config:  minimalConfig + "\n[extraction]\nproduct_anchor = \"(\"\n",
			wantErr: "extraction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
