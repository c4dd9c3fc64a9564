// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Telegram   TelegramConfig
	Dictionary DictionaryConfig
	Logging    LoggingConfig
	// SessionIdleTimeout is how long a bot learning session may sit untouched
	SessionIdleTimeout time.Duration
	// Location decides where calendar days start for streaks
	Location *time.Location
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type string
	Path string
	URL  string
}

// TelegramConfig holds bot settings
type TelegramConfig struct {
	Token string
}

// DictionaryConfig holds lookup service settings
type DictionaryConfig struct {
	APIURL  string
	Timeout time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbType := strings.ToLower(os.Getenv("DB_TYPE"))
	if dbType == "" {
		dbType = "sqlite"
	}
	switch dbType {
	case "sqlite":
		cfg.Database.Path = os.Getenv("DB_PATH")
		if cfg.Database.Path == "" {
			cfg.Database.Path = "data/wordbook.db"
		}
	case "postgres":
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid DB_TYPE %q: expected sqlite or postgres", dbType)
	}
	cfg.Database.Type = dbType

	// Telegram token is only checked by the bot command
	cfg.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")

	// Dictionary configuration
	cfg.Dictionary.APIURL = os.Getenv("DICTIONARY_API_URL")
	timeoutStr := os.Getenv("DICTIONARY_TIMEOUT")
	if timeoutStr == "" {
		timeoutStr = "10s"
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DICTIONARY_TIMEOUT: %w", err)
	}
	cfg.Dictionary.Timeout = timeout

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// Session idle timeout (default: 30 minutes)
	idleStr := os.Getenv("SESSION_IDLE_TIMEOUT")
	if idleStr == "" {
		idleStr = "30m"
	}
	idle, err := time.ParseDuration(idleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	if idle <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	cfg.SessionIdleTimeout = idle

	// Timezone for day boundaries (default: local)
	cfg.Location = time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}
