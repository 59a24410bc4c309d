// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App AppConfig
	DB  DBConfig
}

// AppConfig holds HTTP server configuration.
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// DBConfig holds storage configuration.
type DBConfig struct {
	Path string
}

// Load reads configuration from the environment. A missing .env file is
// fine; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	return &Config{
		App: AppConfig{
			Port:     port,
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Path: getEnv("DB_PATH", "office.db"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
