package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/scrivener/internal/config"
	"github.com/JaimeStill/scrivener/internal/infrastructure"
	"github.com/JaimeStill/scrivener/pkg/database"
	"github.com/JaimeStill/scrivener/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "scrivener",
			User:            "scrivener",
			Password:        "scrivener",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "sources",
			ConnectionString: azuriteConnString,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Cache == nil {
		t.Error("Cache is nil")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "info", Format: "json"}, &buf)
		logger.Info("hello", "key", "value")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("not json: %v: %s", err, buf.String())
		}
		if entry["msg"] != "hello" || entry["key"] != "value" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("text filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Error("info message logged at warn level")
		}
		if !strings.Contains(out, "msg=shown") {
			t.Errorf("output = %q", out)
		}
	})
}
