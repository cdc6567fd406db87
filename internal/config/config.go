package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type HermesConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
}

type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`
	// CheckIntervalMs is how often the loop checks whether the current
	// month's snapshot exists.
	CheckIntervalMs int `yaml:"check_interval_ms"`
	// AutoSnapshot publishes the current month on the first check that finds
	// it missing.
	AutoSnapshot bool `yaml:"auto_snapshot"`
	// RecalculateOnStart runs one batch before serving traffic.
	RecalculateOnStart bool `yaml:"recalculate_on_start"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Scheduler.CheckIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Database: DatabaseConfig{
			MigrateOnStart: true,
		},
		Hermes: HermesConfig{
			URL:        "nats://localhost:4222",
			QueueGroup: "chefrank",
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			CheckIntervalMs:    3600000,
			AutoSnapshot:       false,
			RecalculateOnStart: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CHEFRANK_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("CHEFRANK_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("CHEFRANK_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("CHEFRANK_MIGRATE_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.MigrateOnStart = b
		}
	}
	if v, ok := os.LookupEnv("CHEFRANK_HERMES_URL"); ok {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("CHEFRANK_HERMES_QUEUE_GROUP"); v != "" {
		cfg.Hermes.QueueGroup = v
	}
	if v := os.Getenv("CHEFRANK_SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scheduler.Enabled = b
		}
	}
	if v := os.Getenv("CHEFRANK_CHECK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scheduler.CheckIntervalMs = n
		}
	}
	if v := os.Getenv("CHEFRANK_AUTO_SNAPSHOT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scheduler.AutoSnapshot = b
		}
	}
	if v := os.Getenv("CHEFRANK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHEFRANK_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// NewLogger builds the process logger from the logging section. Unknown
// levels fall back to info; any format other than "text" is JSON.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
