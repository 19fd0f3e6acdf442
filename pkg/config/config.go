package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inventoryhq/catalog/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Timeout  time.Duration

	// RunMigrations applies pending schema migrations at startup
	RunMigrations bool
}

// RedisConfig holds Redis configuration for the login rate limiter.
// An empty URL disables rate limiting entirely.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// JWTSecret signs and verifies tokens. Required, no default.
	JWTSecret string
	// TokenTTL is the fixed token lifetime; clients cannot choose it.
	TokenTTL time.Duration
	// BCryptCost is the bcrypt work factor for password hashing.
	BCryptCost int
	// LoginRateLimit is the max auth attempts per client IP per window.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("CATALOG_HOST", "0.0.0.0"),
			Port:            getEnv("CATALOG_PORT", "8080"),
			ReadTimeout:     getEnvDuration("CATALOG_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("CATALOG_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("CATALOG_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("CATALOG_SHUTDOWN_TIMEOUT", 30*time.Second),
			MaxBodyBytes:    getEnvInt64("CATALOG_MAX_BODY_BYTES", 1<<20),
			HealthPort:      getEnv("CATALOG_HEALTH_PORT", "9090"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("CATALOG_POSTGRES_URL", ""),
			MaxConns: getEnvInt("CATALOG_POSTGRES_MAX_CONNS", 25),
			MinConns: getEnvInt("CATALOG_POSTGRES_MIN_CONNS", 5),
			Timeout:  getEnvDuration("CATALOG_POSTGRES_TIMEOUT", 10*time.Second),

			RunMigrations: getEnvBool("CATALOG_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("CATALOG_REDIS_URL", ""),
			Password: getEnv("CATALOG_REDIS_PASSWORD", ""),
			DB:       getEnvInt("CATALOG_REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("CATALOG_JWT_SECRET", ""),
			TokenTTL:        getEnvDuration("CATALOG_TOKEN_TTL", 24*time.Hour),
			BCryptCost:      getEnvInt("CATALOG_BCRYPT_COST", bcrypt.DefaultCost),
			LoginRateLimit:  getEnvInt("CATALOG_LOGIN_RATE_LIMIT", 10),
			LoginRateWindow: getEnvDuration("CATALOG_LOGIN_RATE_WINDOW", time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("CATALOG_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("CATALOG_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 bytes")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Auth.BCryptCost < bcrypt.MinCost || c.Auth.BCryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// Address returns the listen address for the API server
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// HealthAddress returns the listen address for the health/metrics server
func (c *ServerConfig) HealthAddress() string {
	return c.Host + ":" + c.HealthPort
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt retrieves an integer environment variable with a default value
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInt64 retrieves an int64 environment variable with a default value
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool retrieves a boolean environment variable with a default value
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvDuration retrieves a duration environment variable with a default value
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
