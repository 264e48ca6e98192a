package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bileto.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Backend != "sqlite" || cfg.Database.SQLite.Path != "bileto.db" {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Search.PerPage != 25 || cfg.Logging.Level != "info" {
		t.Errorf("unexpected defaults %+v %+v", cfg.Search, cfg.Logging)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  backend: postgres
  postgres:
    dsn: postgres://localhost/bileto
    driver: postgres
  timeout: 5s
search:
  actorId: 12
  scope: "org:#1,#2"
logging:
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Backend != "postgres" || cfg.Database.Postgres.DSN != "postgres://localhost/bileto" {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.Database.Postgres.Schema != "bileto" {
		t.Errorf("expected default schema to survive, got %q", cfg.Database.Postgres.Schema)
	}
	if cfg.Database.Postgres.Driver != "postgres" || cfg.Database.Timeout != 5*time.Second {
		t.Errorf("unexpected database %+v", cfg.Database)
	}
	if cfg.Search.ActorID != 12 || cfg.Search.Scope != "org:#1,#2" {
		t.Errorf("unexpected search %+v", cfg.Search)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BILETO_SQLITE_PATH", "/tmp/other.db")
	t.Setenv("BILETO_ACTOR_ID", "7")
	t.Setenv("BILETO_LOG_LEVEL", "debug")
	t.Setenv("BILETO_METRICS", "true")

	cfg, err := Load(writeConfig(t, "search:\n  actorId: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.SQLite.Path != "/tmp/other.db" || cfg.Search.ActorID != 7 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Logging.Level != "debug" || !cfg.Metrics.Enabled {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{"bad yaml", "database: [", nil, "parsing config file"},
		{"unknown backend", "database:\n  backend: mysql\n", nil, "unknown database backend"},
		{"missing dsn", "database:\n  backend: postgres\n", nil, "dsn is required"},
		{"bad actor", "", map[string]string{"BILETO_ACTOR_ID": "me"}, "BILETO_ACTOR_ID"},
		{"bad timeout", "", map[string]string{"BILETO_DATABASE_TIMEOUT": "soon"}, "BILETO_DATABASE_TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BILETO_LOG_LEVEL", "debug")
	path := writeConfig(t, "database:\n  backend: postgres\n")

	cfg, err := Load(path, func(c *Config) {
		c.Database.Postgres.DSN = "postgres://db/bileto"
		c.Logging.Level = "error"
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Postgres.DSN != "postgres://db/bileto" || cfg.Logging.Level != "error" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}
