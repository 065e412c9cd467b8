package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults when nothing is configured", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.Database.Path != "internships.db" {
			t.Fatalf("unexpected default database path %q", cfg.Database.Path)
		}
		if cfg.Database.BusyTimeout != 5*time.Second {
			t.Fatalf("unexpected default busy timeout %v", cfg.Database.BusyTimeout)
		}
		if cfg.Import.DefaultDelimiter != ";" {
			t.Fatalf("unexpected default delimiter %q", cfg.Import.DefaultDelimiter)
		}
		if got := strings.Join(cfg.Import.Encodings, ","); got != "utf-8,windows-1252,iso-8859-1" {
			t.Fatalf("unexpected default encodings %q", got)
		}
		if cfg.Documents.DefaultStatus != "Pendente" {
			t.Fatalf("unexpected default status %q", cfg.Documents.DefaultStatus)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "database:\n  path: from-file.db\nlog:\n  level: debug\ndocuments:\n  defaults:\n    - Termo\n    - Plano\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		t.Setenv("INTERNSHIPS_DATABASE_PATH", "from-env.db")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Database.Path != "from-env.db" {
			t.Fatalf("expected env to win, got %q", cfg.Database.Path)
		}
		if cfg.Log.Level != "debug" {
			t.Fatalf("expected level from file, got %q", cfg.Log.Level)
		}
		if got := strings.Join(cfg.Documents.Defaults, ","); got != "Termo,Plano" {
			t.Fatalf("unexpected checklist %q", got)
		}
	})

	t.Run("reports every invalid key", func(t *testing.T) {
		t.Setenv("INTERNSHIPS_LOG_FORMAT", "xml")
		t.Setenv("INTERNSHIPS_DATABASE_BUSY_TIMEOUT", "-1s")
		t.Setenv("INTERNSHIPS_IMPORT_DEFAULT_DELIMITER", ";;")

		_, err := Load("")
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		expected := "configuration values are invalid: database.busy_timeout, log.format, import.default_delimiter"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
}

func TestValidateReportsMissingBeforeInvalid(t *testing.T) {
	cfg := Config{
		Log:    LogConfig{Level: "loud", Format: "text"},
		Import: ImportConfig{DefaultDelimiter: ";"},
	}
	err := cfg.Validate()
	if err == nil || err.Error() != "required configuration is missing: database.path" {
		t.Fatalf("unexpected error: %v", err)
	}
}
