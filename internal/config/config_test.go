package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"CHEFRANK_PORT", "CHEFRANK_METRICS_PORT", "CHEFRANK_DATABASE_URL",
	"CHEFRANK_MIGRATE_ON_START", "CHEFRANK_HERMES_URL", "CHEFRANK_HERMES_QUEUE_GROUP",
	"CHEFRANK_SCHEDULER_ENABLED", "CHEFRANK_CHECK_INTERVAL_MS", "CHEFRANK_AUTO_SNAPSHOT",
	"CHEFRANK_LOG_LEVEL", "CHEFRANK_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if !cfg.Database.MigrateOnStart {
		t.Error("expected migrate_on_start=true by default")
	}
	if cfg.Hermes.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.Hermes.URL)
	}
	if cfg.Hermes.QueueGroup != "chefrank" {
		t.Errorf("expected queue group 'chefrank', got %s", cfg.Hermes.QueueGroup)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("expected scheduler enabled by default")
	}
	if cfg.Scheduler.AutoSnapshot {
		t.Error("expected auto_snapshot=false by default")
	}
	if !cfg.Scheduler.RecalculateOnStart {
		t.Error("expected recalculate_on_start=true by default")
	}
	if cfg.CheckInterval() != time.Hour {
		t.Errorf("expected CheckInterval 1h, got %v", cfg.CheckInterval())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHEFRANK_PORT", "9000")
	t.Setenv("CHEFRANK_METRICS_PORT", "9001")
	t.Setenv("CHEFRANK_DATABASE_URL", "postgres://localhost/chefrank_test")
	t.Setenv("CHEFRANK_MIGRATE_ON_START", "false")
	t.Setenv("CHEFRANK_HERMES_URL", "nats://nats:4222")
	t.Setenv("CHEFRANK_HERMES_QUEUE_GROUP", "ranker")
	t.Setenv("CHEFRANK_SCHEDULER_ENABLED", "false")
	t.Setenv("CHEFRANK_CHECK_INTERVAL_MS", "60000")
	t.Setenv("CHEFRANK_AUTO_SNAPSHOT", "true")
	t.Setenv("CHEFRANK_LOG_LEVEL", "debug")
	t.Setenv("CHEFRANK_LOG_FORMAT", "text")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Database.URL != "postgres://localhost/chefrank_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.Database.MigrateOnStart {
		t.Error("expected migrate_on_start disabled")
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Hermes.QueueGroup != "ranker" {
		t.Errorf("expected queue group 'ranker', got '%s'", cfg.Hermes.QueueGroup)
	}
	if cfg.Scheduler.Enabled {
		t.Error("expected scheduler disabled")
	}
	if cfg.CheckInterval() != time.Minute {
		t.Errorf("expected CheckInterval 1m, got %v", cfg.CheckInterval())
	}
	if !cfg.Scheduler.AutoSnapshot {
		t.Error("expected auto_snapshot enabled")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("expected debug/text logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestEmptyHermesURLDisablesEvents(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHEFRANK_HERMES_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Hermes.URL != "" {
		t.Errorf("expected empty hermes URL, got %q", cfg.Hermes.URL)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "chefrank.yaml")
	data := `
server:
  port: 8800
database:
  url: postgres://db/chefrank
scheduler:
  auto_snapshot: true
  check_interval_ms: 1000
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8800 {
		t.Errorf("expected port 8800, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port kept, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Database.URL != "postgres://db/chefrank" {
		t.Errorf("unexpected database URL %q", cfg.Database.URL)
	}
	if !cfg.Scheduler.AutoSnapshot || cfg.CheckInterval() != time.Second {
		t.Errorf("unexpected scheduler config %+v", cfg.Scheduler)
	}

	t.Setenv("CHEFRANK_PORT", "9100")
	cfg, _ = Load(path)
	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	logger.Warn("careful", "chef_id", "abc")
	if !strings.Contains(buf.String(), `"chef_id":"abc"`) {
		t.Errorf("expected JSON output, got %s", buf.String())
	}

	buf.Reset()
	LoggingConfig{Level: "bogus", Format: "text"}.NewLogger(&buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text output at info level, got %s", buf.String())
	}
}
