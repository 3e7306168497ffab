package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/errors"
)

// Property section and names read by ConfigFromProps.
const (
	PropSection       = "database"
	PropConnectionURL = "connection_url"
	PropMaxPoolSize   = "max_pool_size"
	PropLogLevel      = "log_level"

	// DefaultMaxPoolSize is used when max_pool_size is unset.
	DefaultMaxPoolSize = 10
)

// Config holds database connection configuration.
type Config struct {
	// DSN is the SQLite data source name, e.g. "books.db" or ":memory:".
	DSN string `mapstructure:"dsn"`

	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h", "30m").
	// "0" disables the limit.
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`

	// ConnMaxIdleTime is the maximum time a connection may sit idle.
	// If empty, no idle timeout is set.
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// RetryBackoff is the base wait between attempts, multiplied by the attempt number.
	RetryBackoff string `mapstructure:"retry_backoff"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`

	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = DefaultMaxPoolSize
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = min(5, c.MaxOpenConns)
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "1s"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	// Every connection to an in-memory database opens a new empty database,
	// so the pool is pinned to a single connection that is never recycled.
	if c.InMemory() {
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
		c.ConnMaxLifetime = "0"
		c.ConnMaxIdleTime = ""
	}
}

// InMemory reports whether the DSN names a private in-memory database.
func (c *Config) InMemory() bool {
	return strings.Contains(c.DSN, ":memory:") || strings.Contains(c.DSN, "mode=memory")
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return errors.MissingField(PropSection + "." + PropConnectionURL)
	}
	if c.MaxOpenConns <= 0 {
		return fmt.Errorf("max_open_conns must be > 0")
	}
	if c.MaxIdleConns <= 0 {
		return fmt.Errorf("max_idle_conns must be > 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0")
	}
	for name, v := range map[string]string{
		"conn_max_lifetime":    c.ConnMaxLifetime,
		"conn_max_idle_time":   c.ConnMaxIdleTime,
		"retry_backoff":        c.RetryBackoff,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

// ConfigFromProps reads DATABASE__CONNECTION_URL, DATABASE__MAX_POOL_SIZE and
// DATABASE__LOG_LEVEL. The connection URL is required.
func ConfigFromProps(p *config.Props) (Config, error) {
	dsn, ok := p.String(PropSection, PropConnectionURL)
	if !ok || dsn == "" {
		return Config{}, errors.MissingField(config.PropKey(PropSection, PropConnectionURL))
	}
	cfg := Config{
		DSN:          dsn,
		MaxOpenConns: p.IntOr(PropSection, PropMaxPoolSize, DefaultMaxPoolSize),
	}
	if lvl, ok := p.String(PropSection, PropLogLevel); ok {
		cfg.LogLevel = lvl
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
