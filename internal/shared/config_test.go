package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Database.Driver != "sqlite" || c.Database.DSN != "./rufflift.db" {
		t.Fatalf("unexpected database defaults: %+v", c.Database)
	}
	if c.Ruff.Bin != "ruff" || c.Ruff.TimeoutSeconds != 120 {
		t.Fatalf("unexpected ruff defaults: %+v", c.Ruff)
	}
	if c.Report.OutDir != "./artifacts" {
		t.Fatalf("unexpected report defaults: %+v", c.Report)
	}
	if c.API.Addr != ":8787" || c.API.SessionHours != 12 {
		t.Fatalf("unexpected api defaults: %+v", c.API)
	}
	if c.Logging.Format != "json" || c.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", c.Logging)
	}
	if c.RuffTimeout() != 2*time.Minute {
		t.Fatalf("expected a 2m timeout; got %s", c.RuffTimeout())
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rufflift.yaml")
	doc := `
database:
  dsn: /var/lib/rufflift/prod.db
ruff:
  bin: /usr/local/bin/ruff
  timeout_seconds: 30
report:
  out_dir: /tmp/reports
  repo_name: backend
api:
  addr: :9090
  allowed_origins:
    - https://app.example.com
logging:
  format: text
  level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Database.DSN != "/var/lib/rufflift/prod.db" {
		t.Fatalf("unexpected dsn: %q", c.Database.DSN)
	}
	if c.Ruff.Bin != "/usr/local/bin/ruff" || c.Ruff.TimeoutSeconds != 30 {
		t.Fatalf("unexpected ruff config: %+v", c.Ruff)
	}
	if c.Report.RepoName != "backend" || c.Report.OutDir != "/tmp/reports" {
		t.Fatalf("unexpected report config: %+v", c.Report)
	}
	if c.API.Addr != ":9090" || len(c.API.AllowedOrigins) != 1 {
		t.Fatalf("unexpected api config: %+v", c.API)
	}
	if c.Logging.Format != "text" || c.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", c.Logging)
	}
	// untouched keys keep their defaults
	if c.Database.Driver != "sqlite" || c.API.SessionHours != 12 {
		t.Fatalf("expected defaults to survive a partial file: %+v", c)
	}
}

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Database.DSN != "./rufflift.db" {
		t.Fatalf("expected defaults for a missing file; got %+v", c.Database)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RUFFLIFT_DB_DSN", "/data/env.db")
	t.Setenv("RUFFLIFT_RUFF_BIN", "ruff-nightly")
	t.Setenv("RUFFLIFT_RUFF_TIMEOUT", "45")
	t.Setenv("RUFFLIFT_OUT_DIR", "/data/out")
	t.Setenv("RUFFLIFT_REPO_NAME", "env-repo")
	t.Setenv("RUFFLIFT_API_ADDR", ":7000")
	t.Setenv("RUFFLIFT_LOG_FORMAT", "text")
	t.Setenv("RUFFLIFT_LOG_LEVEL", "warn")

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Database.DSN != "/data/env.db" || c.Ruff.Bin != "ruff-nightly" || c.Ruff.TimeoutSeconds != 45 {
		t.Fatalf("env overrides not applied: %+v", c)
	}
	if c.Report.OutDir != "/data/out" || c.Report.RepoName != "env-repo" {
		t.Fatalf("env overrides not applied to report: %+v", c.Report)
	}
	if c.API.Addr != ":7000" || c.Logging.Format != "text" || c.Logging.Level != "warn" {
		t.Fatalf("env overrides not applied to api/logging: %+v", c)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rufflift.yaml")
	if err := os.WriteFile(path, []byte("database:\n  dsn: /from/file.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RUFFLIFT_DB_DSN", "/from/env.db")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Database.DSN != "/from/env.db" {
		t.Fatalf("expected the env to win; got %q", c.Database.DSN)
	}
}

func TestBadTimeoutEnvIgnored(t *testing.T) {
	t.Setenv("RUFFLIFT_RUFF_TIMEOUT", "soon")
	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if c.Ruff.TimeoutSeconds != 120 {
		t.Fatalf("expected the default timeout; got %d", c.Ruff.TimeoutSeconds)
	}
}
