package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Database string `env:"NAME" envDefault:"planningpoker"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DSN returns the Postgres connection URL.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Config is the process configuration shared by every binary.
type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	GatewayPort string        `env:"GATEWAY_PORT" envDefault:"8081"`
	RelayPort   string        `env:"RELAY_PORT" envDefault:"8082"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	DB          DBConfig      `envPrefix:"DB_"`
	NATSURL     string        `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
	Settings    string        `env:"POKER_SETTINGS" envDefault:"settings.yaml"`
	Migrate     bool          `env:"MIGRATE" envDefault:"true"`
	Fallback    time.Duration `env:"OUTBOX_FALLBACK_INTERVAL" envDefault:"30s"`
	PresenceTTL time.Duration `env:"PRESENCE_TTL" envDefault:"45s"`
	ConsumerID  string        `env:"GATEWAY_CONSUMER" envDefault:"poker-gateway"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// SetupLogging points the global logger at a console writer on stderr.
func SetupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
