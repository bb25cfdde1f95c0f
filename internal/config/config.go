package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	Port     string `env:"PORT" env-default:"8080"`
	Database Database
	Redis    Redis
	JWT      JWT
	// EncryptionKey must be exactly 32 bytes (AES-256).
	EncryptionKey  string        `env:"ENCRYPTION_KEY" env-default:"change-me-change-me-change-me-32b"`
	RateLimit      int           `env:"RATE_LIMIT" env-default:"20"`
	RateWindow     time.Duration `env:"RATE_WINDOW" env-default:"1m"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

type Database struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD" env-default:"password"`
	Name     string `env:"DB_NAME" env-default:"hotspothub"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost"`
	Port     string `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type JWT struct {
	Secret   string        `env:"JWT_SECRET" env-default:"your-super-secret-key-change-in-production"`
	TokenTTL time.Duration `env:"TOKEN_TTL" env-default:"24h"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if len(cfg.EncryptionKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 32 bytes, got %d", len(cfg.EncryptionKey))
	}

	return &cfg, nil
}
