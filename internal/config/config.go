// Package config defines the top-level configuration for tradelogd and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TRADELOG_* environment
// variables.
type Config struct {
	Bus       BusConfig      `toml:"bus"`
	Feed      FeedConfig     `toml:"feed"`
	Accounts  AccountsConfig `toml:"accounts"`
	Converter ConvertConfig  `toml:"converter"`
	Redis     RedisConfig    `toml:"redis"`
	Audit     AuditConfig    `toml:"audit"`
	Archive   ArchiveConfig  `toml:"archive"`
	LogLevel  string         `toml:"log_level"`
}

// BusConfig holds Kafka connection parameters for both directions.
type BusConfig struct {
	Enabled       bool     `toml:"enabled"`
	Brokers       []string `toml:"brokers"`
	OrdersTopic   string   `toml:"orders_topic"`
	TradeLogTopic string   `toml:"tradelog_topic"`
	GroupID       string   `toml:"group_id"`
	MaxBytes      int      `toml:"max_bytes"`
	WriteTimeout  duration `toml:"write_timeout"`
	BatchTimeout  duration `toml:"batch_timeout"`
}

// FeedConfig holds the optional WebSocket event-stream source.
type FeedConfig struct {
	Enabled bool   `toml:"enabled"`
	WsURL   string `toml:"ws_url"`
}

// AccountsConfig holds the account-lookup service parameters.
type AccountsConfig struct {
	BaseURL           string   `toml:"base_url"`
	ApiKey            string   `toml:"api_key"`
	CallTimeout       duration `toml:"call_timeout"`
	MaxRetries        int      `toml:"max_retries"`
	SlowCallThreshold duration `toml:"slow_call_threshold"`
}

// ConvertConfig holds conversion pipeline tunables.
type ConvertConfig struct {
	// SlowProcessThreshold bounds end-to-end handling of one event before a
	// warning is logged; a publish exceeding it also restarts the publisher.
	SlowProcessThreshold duration `toml:"slow_process_threshold"`
}

// RedisConfig holds the optional shared wallet-cache tier.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// AuditConfig holds the optional PostgreSQL audit sink.
type AuditConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// ArchiveConfig holds the optional S3 cold-archive sink.
type ArchiveConfig struct {
	Enabled        bool     `toml:"enabled"`
	Endpoint       string   `toml:"endpoint"`
	Region         string   `toml:"region"`
	Bucket         string   `toml:"bucket"`
	AccessKey      string   `toml:"access_key"`
	SecretKey      string   `toml:"secret_key"`
	UseSSL         bool     `toml:"use_ssl"`
	ForcePathStyle bool     `toml:"force_path_style"`
	Prefix         string   `toml:"prefix"`
	FlushInterval  duration `toml:"flush_interval"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Bus: BusConfig{
			Enabled:       true,
			Brokers:       []string{"localhost:9092"},
			OrdersTopic:   "me.execution-events",
			TradeLogTopic: "tradelog",
			GroupID:       "tradelogd",
			WriteTimeout:  duration{10 * time.Second},
			BatchTimeout:  duration{10 * time.Millisecond},
		},
		Feed: FeedConfig{
			Enabled: false,
		},
		Accounts: AccountsConfig{
			BaseURL:           "http://localhost:5000",
			CallTimeout:       duration{5 * time.Minute},
			MaxRetries:        5,
			SlowCallThreshold: duration{10 * time.Second},
		},
		Converter: ConvertConfig{
			SlowProcessThreshold: duration{time.Minute},
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			PoolSize: 20,
		},
		Audit: AuditConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "tradelog",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Archive: ArchiveConfig{
			Enabled:        false,
			Region:         "us-east-1",
			Bucket:         "tradelog-archive",
			Prefix:         "tradelog",
			ForcePathStyle: true,
			FlushInterval:  duration{5 * time.Minute},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// At least one event source must be configured.
	if !c.Bus.Enabled && !c.Feed.Enabled {
		errs = append(errs, "either bus or feed must be enabled")
	}

	// The publisher always needs brokers, even in feed-only ingest.
	if len(c.Bus.Brokers) == 0 {
		errs = append(errs, "bus: brokers must not be empty")
	}
	if c.Bus.TradeLogTopic == "" {
		errs = append(errs, "bus: tradelog_topic must not be empty")
	}
	if c.Bus.Enabled {
		if c.Bus.OrdersTopic == "" {
			errs = append(errs, "bus: orders_topic must not be empty")
		}
		if c.Bus.GroupID == "" {
			errs = append(errs, "bus: group_id must not be empty")
		}
	}

	// Feed
	if c.Feed.Enabled && c.Feed.WsURL == "" {
		errs = append(errs, "feed: ws_url must not be empty when enabled")
	}

	// Accounts
	if c.Accounts.BaseURL == "" {
		errs = append(errs, "accounts: base_url must not be empty")
	}
	if c.Accounts.MaxRetries < 0 {
		errs = append(errs, "accounts: max_retries must be >= 0")
	}
	if c.Accounts.CallTimeout.Duration <= 0 {
		errs = append(errs, "accounts: call_timeout must be positive")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if strings.TrimSpace(c.Audit.DSN) == "" {
			if c.Audit.Host == "" {
				errs = append(errs, "audit: host must not be empty (or set audit.dsn)")
			}
			if c.Audit.Port <= 0 || c.Audit.Port > 65535 {
				errs = append(errs, fmt.Sprintf("audit: port must be 1-65535, got %d", c.Audit.Port))
			}
			if c.Audit.Database == "" {
				errs = append(errs, "audit: database must not be empty")
			}
		}
		if c.Audit.PoolMaxConns < 1 {
			errs = append(errs, "audit: pool_max_conns must be >= 1")
		}
		if c.Audit.PoolMinConns < 0 {
			errs = append(errs, "audit: pool_min_conns must be >= 0")
		}
		if c.Audit.PoolMinConns > c.Audit.PoolMaxConns {
			errs = append(errs, "audit: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Archive
	if c.Archive.Enabled {
		if c.Archive.Bucket == "" {
			errs = append(errs, "archive: bucket must not be empty when enabled")
		}
		if c.Archive.Region == "" {
			errs = append(errs, "archive: region must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
