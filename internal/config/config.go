// Package config loads process configuration with viper: an optional YAML
// file overlaid by SCRIPTGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrDatabaseURLMissing = errors.New("DATABASE_URL not set")

type Config struct {
	Env        string `mapstructure:"env"`
	ListenAddr string `mapstructure:"listen_addr"`

	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`

	ScanWorkers         int           `mapstructure:"scan_workers"`
	PollInterval        time.Duration `mapstructure:"poll_interval"`
	ScanInterval        time.Duration `mapstructure:"scan_interval"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	HashCacheTTL        time.Duration `mapstructure:"hash_cache_ttl"`
	ScanWaitTimeout     time.Duration `mapstructure:"scan_wait_timeout"`
	VerifyConcurrency   int           `mapstructure:"verify_concurrency"`

	TrustedCDNs     []string `mapstructure:"trusted_cdns"`
	PaymentGateways []string `mapstructure:"payment_gateways"`
	CORSOrigins     []string `mapstructure:"cors_origins"`

	Stores []StoreConfig `mapstructure:"stores"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" && s.From != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("scan_workers", 0)
	v.SetDefault("poll_interval", 500*time.Millisecond)
	v.SetDefault("scan_interval", 24*time.Hour)
	v.SetDefault("maintenance_interval", 24*time.Hour)
	v.SetDefault("fetch_timeout", 10*time.Second)
	v.SetDefault("hash_cache_ttl", 60*time.Minute)
	v.SetDefault("scan_wait_timeout", 30*time.Second)
	v.SetDefault("verify_concurrency", 4)
	v.SetDefault("trusted_cdns", []string{})
	v.SetDefault("payment_gateways", []string{})
	v.SetDefault("cors_origins", []string{"*"})
}

// Load reads path (if non-empty) and the environment. A missing database URL
// for the postgres driver is reported as ErrDatabaseURLMissing alongside the
// otherwise complete config so callers can decide.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SCRIPTGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Legacy unprefixed names.
	_ = v.BindEnv("database.url", "SCRIPTGUARD_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("listen_addr", "SCRIPTGUARD_LISTEN_ADDR", "LISTEN_ADDR")
	_ = v.BindEnv("scan_workers", "SCRIPTGUARD_SCAN_WORKERS", "SCAN_WORKERS")
	_ = v.BindEnv("env", "SCRIPTGUARD_ENV", "APP_ENV")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	for i := range cfg.Stores {
		cfg.Stores[i].applyDefaults()
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return ErrDatabaseURLMissing
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	seen := make(map[int]bool, len(c.Stores))
	for _, s := range c.Stores {
		if s.ID <= 0 {
			return fmt.Errorf("store %q: id must be positive", s.Name)
		}
		if seen[s.ID] {
			return fmt.Errorf("store id %d configured twice", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
