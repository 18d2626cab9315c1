package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the ledger service.
// Environment variables are parsed from the LEDGER_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: auto, postgres, sqlite
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite Configuration (local builds); empty resolves to ~/.dialectdeck/ledger.db
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// Health and startup
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"10"`

	// Badge notifications; empty address keeps them in process
	RedisAddr    string `envconfig:"REDIS_ADDR" default:""`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"ledger-events"`
	EventBuffer  int    `envconfig:"EVENT_BUFFER" default:"256"`

	// Admin key for catalog and reference writes; empty leaves them open
	AdminAPIKey string `envconfig:"ADMIN_API_KEY" default:""`

	// Chat relay; an empty key disables POST /api/chat
	ChatGatewayURL   string `envconfig:"CHAT_GATEWAY_URL" default:"https://ai.gateway.lovable.dev/v1/chat/completions"`
	ChatGatewayKey   string `envconfig:"CHAT_GATEWAY_KEY" default:""`
	ChatModel        string `envconfig:"CHAT_MODEL" default:"google/gemini-2.5-flash"`
	ChatSystemPrompt string `envconfig:"CHAT_SYSTEM_PROMPT" default:""`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER postgres requires POSTGRES_DSN")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.HealthIntervalSeconds <= 0 {
		c.HealthIntervalSeconds = 30
	}
	if c.HealthProbeTimeoutSeconds <= 0 {
		c.HealthProbeTimeoutSeconds = 2
	}
	if c.BootstrapTimeoutSeconds <= 0 {
		c.BootstrapTimeoutSeconds = 10
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 256
	}
	if c.BuildTarget == "cloud" && c.AdminAPIKey == "" {
		return fmt.Errorf("BUILD_TARGET cloud requires ADMIN_API_KEY")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with LEDGER_
// Example: LEDGER_DB_DRIVER, LEDGER_HTTP_PORT
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("LEDGER", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("sqlite_path", cfg.SQLitePath).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("redis_enabled", cfg.RedisAddr != "").
		Bool("chat_enabled", cfg.ChatEnabled()).
		Bool("admin_key_present", cfg.AdminAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  "sqlite",
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		SQLitePath:                "ledger-test.db",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   5,
		RedisChannel:              "ledger-events",
		EventBuffer:               16,
		ChatModel:                 "google/gemini-2.5-flash",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ChatEnabled reports whether the chat relay has gateway credentials.
func (c *Config) ChatEnabled() bool {
	return c.ChatGatewayKey != ""
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

func (c *Config) HealthProbeTimeout() time.Duration {
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}

func (c *Config) BootstrapTimeout() time.Duration {
	return time.Duration(c.BootstrapTimeoutSeconds) * time.Second
}
