package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names recognised in the environment setting.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// devJWTSecret is the built-in development signing secret.
// It is refused in production: Validate() fails fast if no real
// secret is configured there.
const devJWTSecret = "loanledger-dev-secret-do-not-use-in-production"

// minJWTSecretLength is the minimum accepted JWT secret length in production.
const minJWTSecretLength = 32

// Config is the root configuration structure for LoanLedger.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Environment string         `yaml:"environment"`
	Database    DatabaseConfig `yaml:"database"`
	API         APIConfig      `yaml:"api"`
	Events      EventsConfig   `yaml:"events"`
	Logging     LoggingConfig  `yaml:"logging"`
	Security    SecurityConfig `yaml:"security"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// EventsConfig contains settings for the optional MQTT event publisher.
type EventsConfig struct {
	Enabled bool              `yaml:"enabled"`
	Broker  EventBrokerConfig `yaml:"broker"`
	Auth    EventAuthConfig   `yaml:"auth"`
	QoS     int               `yaml:"qos"`
}

// EventBrokerConfig contains MQTT broker connection details.
type EventBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// EventAuthConfig contains MQTT authentication credentials.
type EventAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT session token settings.
// The session TTL is a fixed policy constant (one hour, see internal/auth)
// and is deliberately not configurable here.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LOANLEDGER_SECTION_KEY
// For example: LOANLEDGER_DATABASE_PATH, LOANLEDGER_JWT_SECRET
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Database: DatabaseConfig{
			Path:        "./data/loanledger.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Events: EventsConfig{
			Enabled: false,
			Broker: EventBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "loanledger-core",
			},
			QoS: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LOANLEDGER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOANLEDGER_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}

	// Database
	if v := os.Getenv("LOANLEDGER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// API
	if v := os.Getenv("LOANLEDGER_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Events
	if v := os.Getenv("LOANLEDGER_EVENTS_HOST"); v != "" {
		cfg.Events.Broker.Host = v
	}
	if v := os.Getenv("LOANLEDGER_EVENTS_USERNAME"); v != "" {
		cfg.Events.Auth.Username = v
	}
	if v := os.Getenv("LOANLEDGER_EVENTS_PASSWORD"); v != "" {
		cfg.Events.Auth.Password = v
	}

	// Security - JWT secret (IMPORTANT: always set in production)
	if v := os.Getenv("LOANLEDGER_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// IsProduction reports whether the configuration targets production.
// The production flag also drives the session cookie's Secure attribute.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// Validate checks the configuration for errors and security issues.
//
// The JWT secret is mandatory in production: session tokens are the only
// authentication credential, so a forgeable secret means forgeable logins.
// In development an insecure built-in default is substituted so the service
// can boot without configuration; UsingDevSecret lets callers warn about it.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Environment) {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, "environment must be development or production")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.Events.QoS < 0 || c.Events.QoS > 2 {
		errs = append(errs, "events.qos must be 0, 1, or 2")
	}

	if c.IsProduction() {
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required in production (set LOANLEDGER_JWT_SECRET)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters")
		}
	} else if c.Security.JWT.Secret == "" {
		c.Security.JWT.Secret = devJWTSecret
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// UsingDevSecret reports whether the insecure development JWT secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.Security.JWT.Secret == devJWTSecret
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
