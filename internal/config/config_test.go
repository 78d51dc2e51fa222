package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/scrivener/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "scrivener"
user = "scrivener"
password = "scrivener"

[storage]
container_name = "sources"
connection_string = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

[cache]
addr = "localhost:6379"

[logging]
level = "debug"
format = "json"

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50

[matching]
threshold = 0.2
max_results = 3
catalog_ttl = "1m"

[sessions]
ttl = "45m"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[matching]
threshold = 0.0
`

const minimalConfig = `
[database]
name = "scrivener"
user = "scrivener"

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

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.ContainerName != "sources" {
		t.Errorf("storage container: got %s, want sources", cfg.Storage.ContainerName)
	}
	if cfg.Cache.Addr != "localhost:6379" {
		t.Errorf("cache addr: got %s", cfg.Cache.Addr)
	}
	if cfg.Cache.KeyPrefix != "scrivener:" {
		t.Errorf("cache key_prefix default: got %s", cfg.Cache.KeyPrefix)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging: got %+v", cfg.Logging)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if got := cfg.Matching.ThresholdValue(); got != 0.2 {
		t.Errorf("matching threshold: got %v, want 0.2", got)
	}
	if cfg.Matching.MaxResults != 3 {
		t.Errorf("matching max_results: got %d, want 3", cfg.Matching.MaxResults)
	}
	if d := cfg.Matching.CatalogTTLDuration(); d != time.Minute {
		t.Errorf("catalog ttl: got %v", d)
	}
	if d := cfg.Sessions.TTLDuration(); d != 45*time.Minute {
		t.Errorf("session ttl: got %v", d)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)

	t.Setenv(config.EnvScrivenerEnv, "staging")

	cfg, err := config.LoadFrom(dir)
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
	if got := cfg.Matching.ThresholdValue(); got != 0 {
		t.Errorf("matching threshold: got %v, want 0 (from overlay)", got)
	}
	if cfg.Matching.MaxResults != 3 {
		t.Errorf("matching max_results: got %d, want 3 (from base)", cfg.Matching.MaxResults)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)

	t.Setenv("SCRIVENER_VERSION", "2.0.0")
	t.Setenv("SCRIVENER_SERVER_PORT", "3000")
	t.Setenv("SCRIVENER_CACHE_ADDR", "redis:6379")
	t.Setenv("SCRIVENER_LOG_LEVEL", "WARN")
	t.Setenv("SCRIVENER_MATCHING_THRESHOLD", "0.4")
	t.Setenv("SCRIVENER_SESSIONS_TTL", "10m")
	t.Setenv("SCRIVENER_API_MAX_UPLOAD_SIZE", "100MB")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Cache.Addr != "redis:6379" {
		t.Errorf("cache addr: got %s", cfg.Cache.Addr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level: got %s, want warn", cfg.Logging.Level)
	}
	if got := cfg.Matching.ThresholdValue(); got != 0.4 {
		t.Errorf("threshold: got %v, want 0.4", got)
	}
	if d := cfg.Sessions.TTLDuration(); d != 10*time.Minute {
		t.Errorf("session ttl: got %v", d)
	}
	if got := cfg.API.MaxUploadSizeBytes(); got != 100*1024*1024 {
		t.Errorf("max upload: got %d", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %s", cfg.Server.Addr())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Cache.Addr != "" {
		t.Errorf("cache addr default should be empty (memory backend), got %s", cfg.Cache.Addr)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults: got %+v", cfg.Logging)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path: got %s", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 20 || cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination defaults: got %+v", cfg.API.Pagination)
	}
	if cfg.API.OpenAPI.Title != "Scrivener API" {
		t.Errorf("openapi title: got %s", cfg.API.OpenAPI.Title)
	}
	if got := cfg.Matching.ThresholdValue(); got != 0.15 {
		t.Errorf("threshold default: got %v, want 0.15", got)
	}
	if cfg.Matching.MaxResults != 5 {
		t.Errorf("max_results default: got %d, want 5", cfg.Matching.MaxResults)
	}
	if d := cfg.Sessions.TTLDuration(); d != 2*time.Hour {
		t.Errorf("session ttl default: got %v", d)
	}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("SCRIVENER_DB_NAME", "testdb")
	t.Setenv("SCRIVENER_DB_USER", "testuser")
	t.Setenv("SCRIVENER_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Storage.ConnectionString != "conn" {
		t.Errorf("storage conn from env: got %s, want conn", cfg.Storage.ConnectionString)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `[server`)

	if _, err := config.LoadFrom(dir); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{"invalid port", "[server]\nport = 99999\n", "invalid port"},
		{"invalid read_timeout", "[server]\nread_timeout = \"bad\"\n", "invalid read_timeout"},
		{"negative idle_timeout", "[server]\nidle_timeout = \"-1s\"\n", "invalid idle_timeout"},
		{"invalid log level", "[logging]\nlevel = \"verbose\"\n", "invalid level"},
		{"invalid log format", "[logging]\nformat = \"xml\"\n", "invalid format"},
		{"threshold out of range", "[matching]\nthreshold = 1.0\n", "threshold"},
		{"negative max_results", "[matching]\nmax_results = -1\n", "max_results"},
		{"invalid catalog_ttl", "[matching]\ncatalog_ttl = \"soon\"\n", "invalid catalog_ttl"},
		{"invalid session ttl", "[sessions]\nttl = \"forever\"\n", "invalid ttl"},
		{"zero session ttl", "[sessions]\nttl = \"0s\"\n", "ttl must be positive"},
		{"invalid upload size", "[api]\nmax_upload_size = \"lots\"\n", "invalid max_upload_size"},
		{"invalid cache dial timeout", "[cache]\ndial_timeout = \"x\"\n", "invalid dial_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", minimalConfig+tt.extra)

			_, err := config.LoadFrom(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 50MB", "50MB", 50 * 1024 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 50MB", "bad", 50 * 1024 * 1024},
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

func TestLoggingSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &config.LoggingConfig{Level: tt.level}
			if got := cfg.SlogLevel().String(); got != tt.want {
				t.Errorf("SlogLevel() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDatabaseFromEnv(t *testing.T) {
	t.Setenv("SCRIVENER_DB_NAME", "scrivener")
	t.Setenv("SCRIVENER_DB_USER", "migrator")
	t.Setenv("SCRIVENER_DB_HOST", "db.internal")

	db, err := config.DatabaseFromEnv()
	if err != nil {
		t.Fatalf("DatabaseFromEnv() error = %v", err)
	}
	if !strings.Contains(db.Dsn(), "migrator@db.internal:5432/scrivener") {
		t.Errorf("dsn = %s", db.Dsn())
	}

	t.Setenv("SCRIVENER_DB_NAME", "")
	if _, err := config.DatabaseFromEnv(); err == nil {
		t.Error("expected error without a database name")
	}
}
