package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/redprice-lab/redprice-analytics/internal/core/analytics"
)

// Config represents the top-level application config plus resolved
// classification profiles.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Reports  ReportsConfig  `koanf:"reports"`

	// ProfileLoading is populated by Load after parsing profile files.
	ProfileLoading ProfileLoadingConfig `koanf:"-"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	Type         string `koanf:"type"` // postgres | memory
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	TTL      string `koanf:"ttl"` // parsed and validated on startup
}

type ReportsConfig struct {
	ConfigDir string `koanf:"config_dir"`
	TopN      int    `koanf:"top_n"`
	CostRatio string `koanf:"cost_ratio"` // decimal in (0, 1]
	BatchSize int    `koanf:"batch_size"` // history page size per storage round-trip
}

type ProfileLoadingConfig struct {
	ConfigDir string
	Profiles  []analytics.ClassificationProfile
}

// EffectiveTTL returns the parsed cache TTL. Call after Validate.
func (c CacheConfig) EffectiveTTL() time.Duration {
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return time.Minute
	}
	return ttl
}

// EffectiveCostRatio returns the parsed profitability cost ratio.
// Call after Validate.
func (c ReportsConfig) EffectiveCostRatio() decimal.Decimal {
	ratio, err := decimal.NewFromString(c.CostRatio)
	if err != nil {
		return analytics.DefaultCostRatio
	}
	return ratio
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Database.Type {
	case "memory":
	case "", "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if c.Cache.Enabled {
		if strings.TrimSpace(c.Cache.Addr) == "" {
			return fmt.Errorf("cache.addr is required when cache is enabled")
		}
		ttl, err := time.ParseDuration(c.Cache.TTL)
		if err != nil {
			return fmt.Errorf("invalid cache.ttl %q: %w", c.Cache.TTL, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("cache.ttl must be > 0")
		}
	}

	if c.Reports.TopN <= 0 {
		return fmt.Errorf("reports.top_n must be > 0")
	}
	if c.Reports.BatchSize <= 0 {
		return fmt.Errorf("reports.batch_size must be > 0")
	}
	ratio, err := decimal.NewFromString(c.Reports.CostRatio)
	if err != nil {
		return fmt.Errorf("invalid reports.cost_ratio %q: %w", c.Reports.CostRatio, err)
	}
	if !ratio.IsPositive() || ratio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("reports.cost_ratio must be in (0, 1]")
	}

	return nil
}

// Load parses config from file + env, validates it, then loads and validates
// classification profiles.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             8080,
		"server.host":             "0.0.0.0",
		"server.max_body_size_mb": 1,
		"server.mode":             "release",
		"database.type":           "postgres",
		"database.dsn":            "",
		"database.max_open_conns": 25,
		"database.max_idle_conns": 25,
		"database.auto_migrate":   true,
		"cache.enabled":           false,
		"cache.addr":              "",
		"cache.password":          "",
		"cache.db":                0,
		"cache.ttl":               "1m",
		"reports.config_dir":      "./config/reports",
		"reports.top_n":           10,
		"reports.cost_ratio":      "0.7",
		"reports.batch_size":      5000,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("REDPRICE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "REDPRICE_")), "__", ".", -1)
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

	repo, err := analytics.NewFileSystemProfileRepository(cfg.Reports.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load classification profiles: %w", err)
	}

	cfg.ProfileLoading = ProfileLoadingConfig{
		ConfigDir: cfg.Reports.ConfigDir,
		Profiles:  repo.GetProfiles(),
	}

	return &cfg, nil
}
