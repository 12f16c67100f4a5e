package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// EngineConfig holds rules-engine tunables.
type EngineConfig struct {
	// RecordBudget is the soft per-record deadline budget of a recompute
	// pass; the pass deadline is records x budget.
	RecordBudget time.Duration
	// DiffLimit caps how many per-field diffs a ledger entry keeps.
	DiffLimit int
}

func Load() (*Config, error) {
	// A missing .env is fine in production; env vars take over.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "obratech_workforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	recordBudget, err := time.ParseDuration(getEnv("ENGINE_RECORD_BUDGET", "50ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_RECORD_BUDGET: %w", err)
	}

	diffLimit, err := strconv.Atoi(getEnv("ENGINE_DIFF_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_DIFF_LIMIT: %w", err)
	}

	config.Engine = EngineConfig{
		RecordBudget: recordBudget,
		DiffLimit:    diffLimit,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Engine.RecordBudget <= 0 {
		return fmt.Errorf("ENGINE_RECORD_BUDGET must be positive")
	}
	if c.Engine.DiffLimit <= 0 {
		return fmt.Errorf("ENGINE_DIFF_LIMIT must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
