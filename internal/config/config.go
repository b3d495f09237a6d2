// Package config loads runtime configuration from the environment.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/ssoward/evyroad/internal/database"
)

// Storage backend selectors.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the full runtime configuration of the API.
type Config struct {
	Port string `mapstructure:"APP_PORT"`
	Env  string `mapstructure:"APP_ENV"`

	// StorageBackend selects the trip repository: "memory" (default)
	// or "postgres".
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`

	// SeedDemoData loads the demo trips at startup.
	SeedDemoData bool `mapstructure:"SEED_DEMO_DATA"`

	// RequireTLS rejects plain-HTTP requests behind the load balancer.
	RequireTLS bool `mapstructure:"REQUIRE_TLS"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	JWTAudience   string `mapstructure:"JWT_AUDIENCE"`

	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            int           `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`

	// RedisAddr enables the stats cache when non-empty.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	StatsCacheTTL time.Duration `mapstructure:"STATS_CACHE_TTL"`

	OTelEnabled  bool   `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from the environment with defaults suitable
// for local development.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("SEED_DEMO_DATA", false)
	v.SetDefault("REQUIRE_TLS", false)

	v.SetDefault("JWT_SIGNING_KEY", "local-dev-signing-key-change-in-production")
	v.SetDefault("JWT_ISSUER", "https://api.evyroad.com")
	v.SetDefault("JWT_AUDIENCE", "evyroad-api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "evyroad")
	v.SetDefault("DB_PASSWORD", "localdev")
	v.SetDefault("DB_NAME", "evyroad")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("STATS_CACHE_TTL", "1m")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DatabaseConfig builds the connection settings for the Postgres pool.
func (c Config) DatabaseConfig() database.Config {
	return database.Config{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		Database:        c.DBName,
		SSLMode:         c.DBSSLMode,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}
