package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads configuration from the given TOML file path, applies defaults
// for unset fields, and then applies TRADELOG_* environment overrides.
// A .env file in the working directory is loaded first if present.
func Load(path string) (Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides maps TRADELOG_* environment variables onto the config.
// Environment always wins over the file, which is how secrets are injected
// in container deployments.
func applyEnvOverrides(c *Config) {
	setStr("TRADELOG_LOG_LEVEL", &c.LogLevel)

	setBool("TRADELOG_BUS_ENABLED", &c.Bus.Enabled)
	setStrSlice("TRADELOG_BUS_BROKERS", &c.Bus.Brokers)
	setStr("TRADELOG_BUS_ORDERS_TOPIC", &c.Bus.OrdersTopic)
	setStr("TRADELOG_BUS_TRADELOG_TOPIC", &c.Bus.TradeLogTopic)
	setStr("TRADELOG_BUS_GROUP_ID", &c.Bus.GroupID)
	setInt("TRADELOG_BUS_MAX_BYTES", &c.Bus.MaxBytes)
	setDuration("TRADELOG_BUS_WRITE_TIMEOUT", &c.Bus.WriteTimeout)
	setDuration("TRADELOG_BUS_BATCH_TIMEOUT", &c.Bus.BatchTimeout)

	setBool("TRADELOG_FEED_ENABLED", &c.Feed.Enabled)
	setStr("TRADELOG_FEED_WS_URL", &c.Feed.WsURL)

	setStr("TRADELOG_ACCOUNTS_BASE_URL", &c.Accounts.BaseURL)
	setStr("TRADELOG_ACCOUNTS_API_KEY", &c.Accounts.ApiKey)
	setDuration("TRADELOG_ACCOUNTS_CALL_TIMEOUT", &c.Accounts.CallTimeout)
	setInt("TRADELOG_ACCOUNTS_MAX_RETRIES", &c.Accounts.MaxRetries)
	setDuration("TRADELOG_ACCOUNTS_SLOW_CALL_THRESHOLD", &c.Accounts.SlowCallThreshold)

	setDuration("TRADELOG_SLOW_PROCESS_THRESHOLD", &c.Converter.SlowProcessThreshold)

	setBool("TRADELOG_REDIS_ENABLED", &c.Redis.Enabled)
	setStr("TRADELOG_REDIS_ADDR", &c.Redis.Addr)
	setStr("TRADELOG_REDIS_PASSWORD", &c.Redis.Password)
	setInt("TRADELOG_REDIS_DB", &c.Redis.DB)
	setInt("TRADELOG_REDIS_POOL_SIZE", &c.Redis.PoolSize)
	setBool("TRADELOG_REDIS_TLS_ENABLED", &c.Redis.TLSEnabled)

	setBool("TRADELOG_AUDIT_ENABLED", &c.Audit.Enabled)
	setStr("TRADELOG_AUDIT_DSN", &c.Audit.DSN)
	setStr("TRADELOG_AUDIT_HOST", &c.Audit.Host)
	setInt("TRADELOG_AUDIT_PORT", &c.Audit.Port)
	setStr("TRADELOG_AUDIT_DATABASE", &c.Audit.Database)
	setStr("TRADELOG_AUDIT_USER", &c.Audit.User)
	setStr("TRADELOG_AUDIT_PASSWORD", &c.Audit.Password)
	setStr("TRADELOG_AUDIT_SSL_MODE", &c.Audit.SSLMode)
	setBool("TRADELOG_AUDIT_RUN_MIGRATIONS", &c.Audit.RunMigrations)

	setBool("TRADELOG_ARCHIVE_ENABLED", &c.Archive.Enabled)
	setStr("TRADELOG_ARCHIVE_ENDPOINT", &c.Archive.Endpoint)
	setStr("TRADELOG_ARCHIVE_REGION", &c.Archive.Region)
	setStr("TRADELOG_ARCHIVE_BUCKET", &c.Archive.Bucket)
	setStr("TRADELOG_ARCHIVE_ACCESS_KEY", &c.Archive.AccessKey)
	setStr("TRADELOG_ARCHIVE_SECRET_KEY", &c.Archive.SecretKey)
	setBool("TRADELOG_ARCHIVE_USE_SSL", &c.Archive.UseSSL)
	setStr("TRADELOG_ARCHIVE_PREFIX", &c.Archive.Prefix)
	setDuration("TRADELOG_ARCHIVE_FLUSH_INTERVAL", &c.Archive.FlushInterval)
}

func setStr(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setStrSlice(key string, dst *[]string) {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}

func setInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(key string, dst *duration) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
