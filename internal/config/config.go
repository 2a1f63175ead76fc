// Package config loads server settings from environment variables through
// viper, applies defaults and validates the result so misconfiguration fails
// at startup. Struct tags name each variable (env, envAlt), its default and
// whether it is required; the viper key is the lower-cased variable name,
// the same key the ceap CLI binds its flags to.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Query    QueryConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout also bounds the wait for running imports.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout applies to every route except the import, which is
	// bounded by Import.Timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies lists CIDRs whose X-Real-IP and X-Forwarded-For
	// headers are believed. Comma separated.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds PostgreSQL pool settings.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the bundled schema at startup.
	Migrate bool `env:"DB_MIGRATE" default:"false"`
}

// ImportConfig holds CEAP import settings.
type ImportConfig struct {
	// BatchSize is the number of expenses per bulk insert.
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"10000"`

	// MaxFileSize is the largest accepted upload in bytes (default: 1GiB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"1073741824"`

	// MaxConcurrent caps imports running at once. Each holds one
	// connection for its whole run.
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"2"`

	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`
	Timeout     time.Duration `env:"IMPORT_TIMEOUT" default:"30m"`
}

// QueryConfig holds read API settings.
type QueryConfig struct {
	PageSize int `env:"QUERY_PAGE_SIZE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
