package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Ugur-Atakan/mckaycpa/pkg/config"
	"github.com/Ugur-Atakan/mckaycpa/pkg/database"
	"github.com/Ugur-Atakan/mckaycpa/pkg/tracing"
)

// Config holds all configuration for the intake service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"INTAKE_HTTP_PORT" envDefault:"8080"`

	// Public base URL used when building client verification links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"intake"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"intake_secret"`
	PostgresDB   string `env:"INTAKE_DB_NAME" envDefault:"intake_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (wizard draft sessions)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT (staff authentication)
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"8h"`

	// Bootstrap admin account created at startup when ADMIN_EMAIL is set.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:""`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:""`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Admin"`

	// Verification links expire this long after issuance.
	VerificationTTL time.Duration `env:"VERIFICATION_LINK_TTL" envDefault:"168h"`

	// Abandoned wizard drafts are evicted after this long without activity.
	DraftTTL time.Duration `env:"WIZARD_DRAFT_TTL" envDefault:"72h"`

	// Rate limiting for the public verification endpoints.
	VerifyRateLimit float64 `env:"VERIFY_RATE_LIMIT_RPS" envDefault:"5"`
	VerifyRateBurst int     `env:"VERIFY_RATE_LIMIT_BURST" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingEnabled    bool    `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	TracingSampleRate float64 `env:"OTEL_TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load intake config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.VerificationTTL <= 0 {
		return nil, fmt.Errorf("verification link TTL must be positive, got %s", cfg.VerificationTTL)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// Postgres returns the connection settings for the Postgres pool.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPass,
		DBName:   c.PostgresDB,
		SSLMode:  c.PostgresSSL,
	}
}

// Redis returns the connection settings for the Redis client.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry setup derived from the environment.
func (c *Config) Tracing() tracing.Config {
	tc := tracing.DefaultConfig("intake-service")
	tc.Environment = c.Environment
	tc.OTLPEndpoint = c.OTLPEndpoint
	tc.Enabled = c.TracingEnabled
	tc.SampleRate = c.TracingSampleRate
	return tc
}
