// Package config provides centralized configuration management for EntryDesk.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Upload       UploadConfig
	Registration RegistrationConfig
	Auth         AuthConfig
	Dedup        DedupConfig
	Rate         RateLimitConfig
	Security     SecurityConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Logging      LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL selects the store by scheme: postgres://, sqlite:// or memory://.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" default:"sqlite://entrydesk.db"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds spreadsheet import settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel imports (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single import (default: 5m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"5m"`
}

// RegistrationConfig controls the write lock and the closing countdown.
type RegistrationConfig struct {
	// WritesEnabled gates every mutating operation (default: true)
	WritesEnabled bool `env:"ENTRYDESK_WRITES_ENABLED" default:"true"`

	// ShowTimer displays the closing countdown banner (default: false)
	ShowTimer bool `env:"SHOW_REGISTRATION_TIMER" default:"false"`

	// ClosesAt is an ISO-8601 timestamp. Values without an offset are
	// interpreted in Timezone. Display only; it does not lock writes.
	ClosesAt string `env:"REGISTRATION_CLOSES_AT" envAlt:"REGISTRATION_CLOSES_AT_IST"`

	Timezone string `env:"REGISTRATION_TIMEZONE" default:"Asia/Kolkata"`
}

// AuthConfig holds coach session and access settings.
type AuthConfig struct {
	// JWTSecret signs session tokens (required, at least 32 bytes)
	JWTSecret string `env:"JWT_SECRET" required:"true"`

	TokenTTL time.Duration `env:"JWT_TOKEN_TTL" default:"12h"`
	Issuer   string        `env:"JWT_ISSUER" default:"entrydesk"`

	// DemoLogin accepts an asserted email/name pair without an identity provider.
	DemoLogin bool `env:"AUTH_DEMO_LOGIN" default:"true"`

	AdminEmails []string `env:"ADMIN_EMAILS"`

	EnforceAllowlist bool     `env:"ENFORCE_COACH_ALLOWLIST" default:"false"`
	CoachEmails      []string `env:"COACH_EMAILS"`
	CoachDomains     []string `env:"COACH_DOMAINS"`
}

// DedupConfig controls duplicate-athlete detection.
type DedupConfig struct {
	// Mode is name_dob_dojo (default) or name_dob.
	Mode string `env:"DEDUP_MODE" default:"name_dob_dojo"`

	// CoachScope is coach (default) or global; it applies to coach-initiated
	// writes. Admin-initiated writes always check globally.
	CoachScope string `env:"DEDUP_COACH_SCOPE" default:"coach"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// RedisConfig enables the statistics cache when URL is set.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
	// StatsTTL bounds how long another server instance can serve totals
	// computed before a write it did not see.
	StatsTTL time.Duration `env:"REDIS_STATS_TTL" default:"30s"`
}

// KafkaConfig enables audit event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_AUDIT_TOPIC" default:"entrydesk.audit"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Scheme returns the lowercased scheme of the database URL, e.g. "sqlite".
func (c *DatabaseConfig) Scheme() string {
	scheme, _, ok := strings.Cut(c.URL, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(scheme)
}
