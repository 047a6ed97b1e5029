package config

import (
	"fmt"
	"time"

	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/config"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage selects and sizes the position/trade store.
type Storage struct {
	Driver     string `mapstructure:"driver"`
	FilePath   string `mapstructure:"file_path"`
	MaxBytes   int64  `mapstructure:"max_bytes"`
	SessionTTL string `mapstructure:"session_ttl"`
}

// Alert holds the price alert schedule.
type Alert struct {
	Enabled        bool   `mapstructure:"enabled"`
	CronExpression string `mapstructure:"cron_expression"`
	CacheDuration  string `mapstructure:"cache_duration"`
	PriceTTL       string `mapstructure:"price_ttl"`
}

// Telegram holds the notifier settings.
type Telegram struct {
	Enabled              bool   `mapstructure:"enabled"`
	BotToken             string `mapstructure:"bot_token"`
	ChatID               int64  `mapstructure:"chat_id"`
	MaxMessagesPerMinute int    `mapstructure:"max_messages_per_minute"`
}

// Config holds the full configuration for the tracker service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	API      config.API      `mapstructure:"api"`
	Storage  Storage         `mapstructure:"storage"`
	Database config.Database `mapstructure:"database"`
	SQLite   config.SQLite   `mapstructure:"sqlite"`
	Redis    config.Redis    `mapstructure:"redis"`
	Alert    Alert           `mapstructure:"alert"`
	Telegram Telegram        `mapstructure:"telegram"`
}

var defaults = map[string]interface{}{
	"app.name":                         "tracker-service",
	"app.env":                          "development",
	"app.version":                      "1.0.0",
	"logger.level":                     "info",
	"logger.encoding":                  "json",
	"api.host":                         "0.0.0.0",
	"api.port":                         8080,
	"storage.driver":                   DriverMemory,
	"storage.file_path":                "data/tracker.json",
	"storage.max_bytes":                common.DefaultStorageQuotaBytes,
	"storage.session_ttl":              "24h",
	"database.host":                    "localhost",
	"database.port":                    5432,
	"database.user":                    "postgres",
	"database.password":                "",
	"database.name":                    "stock_tracker",
	"database.ssl_mode":                "disable",
	"database.time_zone":               "UTC",
	"database.max_idle_conns":          5,
	"database.max_open_conns":          10,
	"database.conn_max_lifetime":       "1h",
	"database.log_level":               "warn",
	"sqlite.dsn":                       "data/tracker.db",
	"sqlite.journal_mode":              "WAL",
	"sqlite.busy_timeout":              "5s",
	"sqlite.log_level":                 "warn",
	"redis.host":                       "localhost",
	"redis.port":                       6379,
	"redis.password":                   "",
	"redis.db":                         0,
	"redis.pool_size":                  10,
	"alert.enabled":                    false,
	"alert.cron_expression":            "*/5 * * * *",
	"alert.cache_duration":             "4h",
	"alert.price_ttl":                  "30m",
	"telegram.enabled":                 false,
	"telegram.bot_token":               "",
	"telegram.chat_id":                 0,
	"telegram.max_messages_per_minute": 20,
}

// Load loads the tracker configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverRedis, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverFile && c.Storage.FilePath == "" {
		return fmt.Errorf("storage.file_path is required for the file driver")
	}
	if c.Storage.Driver == DriverSQLite && c.SQLite.DSN == "" {
		return fmt.Errorf("sqlite.dsn is required for the sqlite driver")
	}
	if c.Storage.MaxBytes < 0 {
		return fmt.Errorf("storage.max_bytes must not be negative")
	}
	for key, value := range map[string]string{
		"storage.session_ttl":  c.Storage.SessionTTL,
		"sqlite.busy_timeout":  c.SQLite.BusyTimeout,
		"alert.cache_duration": c.Alert.CacheDuration,
		"alert.price_ttl":      c.Alert.PriceTTL,
	} {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id are required when telegram is enabled")
	}
	return nil
}

// SessionTTL is the expiry of session-scoped storage. Zero disables expiry.
func (c *Config) SessionTTL() time.Duration {
	d, _ := parseDuration(c.Storage.SessionTTL)
	return d
}

// SQLiteBusyTimeout is how long sqlite waits on a locked database.
func (c *Config) SQLiteBusyTimeout() time.Duration {
	d, _ := parseDuration(c.SQLite.BusyTimeout)
	return d
}

// AlertCacheDuration is how long an alert for the same level is suppressed.
func (c *Config) AlertCacheDuration() time.Duration {
	d, _ := parseDuration(c.Alert.CacheDuration)
	return d
}

// PriceTTL is how long a stored market price stays valid.
func (c *Config) PriceTTL() time.Duration {
	d, _ := parseDuration(c.Alert.PriceTTL)
	return d
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
