package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Registry backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Server   Server
	Log      Log
	Registry Registry
	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"MARKETFACTORY_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"MARKETFACTORY_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Log selects the slog handler and level.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Registry selects the store the query service reads from.
type Registry struct {
	Backend          string   `env:"REGISTRY_BACKEND" envDefault:"memory"`
	DefaultPageLimit uint64   `env:"REGISTRY_DEFAULT_PAGE_LIMIT" envDefault:"50"`
	Seed             []string `env:"REGISTRY_SEED" envSeparator:","`
}

// RedisConfig configures the go-redis client and the list key holding the registry.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	ListKey      string        `env:"REDIS_REGISTRY_KEY" envDefault:"marketfactory:markets"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// PostgresConfig configures the database/sql pool.
type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// KafkaConfig configures the replication feed. The feed is disabled when
// Brokers is empty. The topic must have a single partition so record order is
// creation order.
type KafkaConfig struct {
	Brokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic    string   `env:"FEED_TOPIC" envDefault:"market-factory.markets.created"`
	ClientID string   `env:"FEED_CLIENT_ID" envDefault:"marketfactory-registry"`
}

// TracingConfig enables the OTLP/HTTP exporter when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"marketfactory-registry"`
}

// Load builds a Config from environment variables so main stays lean.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that struct tags cannot express.
func (c Config) Validate() error {
	switch c.Registry.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s backend", BackendRedis)
		}
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}
	if c.Registry.DefaultPageLimit == 0 {
		return fmt.Errorf("REGISTRY_DEFAULT_PAGE_LIMIT must be positive")
	}
	return nil
}

// FeedEnabled reports whether the Kafka replication feed should run.
// The feed only mirrors into the in-memory replica.
func (c Config) FeedEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Registry.Backend == BackendMemory
}
