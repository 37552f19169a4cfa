package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline is Load for tools that never serve HTTP: auth settings are
// neither required nor validated.
func LoadOffline() (*Config, error) {
	return load(false)
}

func load(serving bool) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), serving); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.validate(serving); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
// Required fields are only enforced when strict is set.
func loadStruct(v reflect.Value, strict bool) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, strict); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required && strict {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		field.SetBool(ParseBool(value))

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// ParseBool reports whether s is one of 1, true, yes, y, on (case-insensitive).
// Anything else, including unrecognized words, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	return c.validate(true)
}

func (c *Config) validate(serving bool) error {
	var errs []string

	// Database validation
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	} else {
		switch scheme := c.Database.Scheme(); scheme {
		case "postgres", "postgresql", "sqlite", "sqlite3", "memory":
		default:
			errs = append(errs, fmt.Sprintf("DATABASE_URL scheme %q must be postgres, sqlite or memory", scheme))
		}
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}
	if c.Upload.Timeout <= 0 {
		errs = append(errs, "UPLOAD_TIMEOUT must be positive")
	}

	// Registration validation
	if _, err := time.LoadLocation(c.Registration.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("REGISTRATION_TIMEZONE (%q) is not a known time zone", c.Registration.Timezone))
	}

	// Auth validation
	if serving && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 bytes")
	}
	if serving && c.Auth.TokenTTL <= 0 {
		errs = append(errs, "JWT_TOKEN_TTL must be positive")
	}
	if c.Auth.EnforceAllowlist && len(c.Auth.CoachEmails) == 0 && len(c.Auth.CoachDomains) == 0 && len(c.Auth.AdminEmails) == 0 {
		errs = append(errs, "ENFORCE_COACH_ALLOWLIST is true but COACH_EMAILS, COACH_DOMAINS and ADMIN_EMAILS are empty; nobody could sign in")
	}

	// Dedup validation
	switch c.Dedup.Mode {
	case "name_dob_dojo", "name_dob":
	default:
		errs = append(errs, fmt.Sprintf("DEDUP_MODE (%q) must be one of: name_dob_dojo, name_dob", c.Dedup.Mode))
	}
	switch c.Dedup.CoachScope {
	case "coach", "global":
	default:
		errs = append(errs, fmt.Sprintf("DEDUP_COACH_SCOPE (%q) must be one of: coach, global", c.Dedup.CoachScope))
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, "KAFKA_AUDIT_TOPIC is required when KAFKA_BROKERS is set")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Secrets and connection strings are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent)
	fmt.Fprintf(&b, "Registration: {WritesEnabled: %v, ShowTimer: %v}, ",
		c.Registration.WritesEnabled, c.Registration.ShowTimer)
	fmt.Fprintf(&b, "Auth: {JWTSecret: [MASKED], DemoLogin: %v, Admins: %d, EnforceAllowlist: %v}, ",
		c.Auth.DemoLogin, len(c.Auth.AdminEmails), c.Auth.EnforceAllowlist)
	fmt.Fprintf(&b, "Dedup: {Mode: %q, CoachScope: %q}, ", c.Dedup.Mode, c.Dedup.CoachScope)
	fmt.Fprintf(&b, "Redis: {Enabled: %v}, Kafka: {Brokers: %d}, ", c.Redis.URL != "", len(c.Kafka.Brokers))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
