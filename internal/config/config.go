package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Model         ModelConfig
	Cache         CacheConfig
	PredictionLog PredictionLogConfig
	Logging       LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigin   string // single front-end origin allowed by CORS
	ShutdownTimeout time.Duration
}

// ModelConfig holds the location of the model artifact
type ModelConfig struct {
	Path string
}

// CacheConfig holds prediction result cache configuration
type CacheConfig struct {
	Size int // 0 disables the cache
}

// PredictionLogConfig holds prediction audit log configuration
type PredictionLogConfig struct {
	Driver             string // postgres, sqlite3 or empty (disabled)
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	Format     string
	File       string // empty logs to stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8000),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 10)) * time.Second,
		},
		Model: ModelConfig{
			Path: getEnv("MODEL_PATH", "models/house_price_model.yaml"),
		},
		Cache: CacheConfig{
			Size: getEnvAsInt("PREDICT_CACHE_SIZE", 0),
		},
		PredictionLog: PredictionLogConfig{
			Driver:             strings.ToLower(getEnv("PREDICTION_LOG_DRIVER", "")),
			DSN:                getEnv("PREDICTION_LOG_DSN", ""),
			MaxConnections:     getEnvAsInt("PREDICTION_LOG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PREDICTION_LOG_MAX_IDLE_CONNECTIONS", 2),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted away
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.AllowedOrigin, "http://") && !strings.HasPrefix(c.Server.AllowedOrigin, "https://") {
		return fmt.Errorf("invalid CORS_ALLOWED_ORIGIN %q", c.Server.AllowedOrigin)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("MODEL_PATH must not be empty")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("invalid PREDICT_CACHE_SIZE %d", c.Cache.Size)
	}
	switch c.PredictionLog.Driver {
	case "":
	case "postgres", "sqlite3":
		if c.PredictionLog.DSN == "" {
			return fmt.Errorf("PREDICTION_LOG_DSN is required when PREDICTION_LOG_DRIVER=%s", c.PredictionLog.Driver)
		}
	default:
		return fmt.Errorf("unsupported PREDICTION_LOG_DRIVER %q", c.PredictionLog.Driver)
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PredictionLogEnabled reports whether predictions are persisted
func (c *Config) PredictionLogEnabled() bool {
	return c.PredictionLog.Driver != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}
