package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Analysis AnalysisConfig `koanf:"analysis"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type AnalysisConfig struct {
	Enabled         bool   `koanf:"enabled"`
	CronInterval    string `koanf:"cron_interval"` // parsed and validated on startup
	TopLimit        int    `koanf:"top_limit"`
	SlowMovingLimit int    `koanf:"slow_moving_limit"`
	TaxonomyFile    string `koanf:"taxonomy_file"` // empty = built-in taxonomy
}

// Interval parses the cron interval. Validate guarantees it parses.
func (c AnalysisConfig) Interval() time.Duration {
	d, _ := time.ParseDuration(c.CronInterval)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	interval, err := time.ParseDuration(c.Analysis.CronInterval)
	if err != nil {
		return fmt.Errorf("invalid analysis.cron_interval %q: %w", c.Analysis.CronInterval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("analysis.cron_interval must be > 0")
	}
	if c.Analysis.TopLimit <= 0 {
		return fmt.Errorf("analysis.top_limit must be > 0")
	}
	if c.Analysis.SlowMovingLimit <= 0 {
		return fmt.Errorf("analysis.slow_moving_limit must be > 0")
	}

	return nil
}

// Load parses config from file + env and validates it.
// BIZLENS_SERVER__PORT=9090 overrides server.port.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                8080,
		"server.host":                "0.0.0.0",
		"server.mode":                "release",
		"database.dsn":               "postgres://localhost:5432/bizlens?sslmode=disable",
		"database.max_open_conns":    25,
		"database.max_idle_conns":    25,
		"database.auto_migrate":      true,
		"analysis.enabled":           true,
		"analysis.cron_interval":     "1h",
		"analysis.top_limit":         10,
		"analysis.slow_moving_limit": 20,
		"analysis.taxonomy_file":     "",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("BIZLENS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "BIZLENS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
