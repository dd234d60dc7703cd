// Package config provides application configuration loading from environment
// variables and .env files for the gobucket CLI and dev server. It uses viper
// for flexible configuration management with sensible defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration loaded from environment variables or .env file.
// Configuration priority: environment variables > .env file > defaults.
type Config struct {
	AppEnv          string        // Application environment (dev, staging, prod)
	APIURL          string        // Definitions endpoint base URL
	APIKey          string        // Client API key sent on definition fetches
	CacheFile       string        // Local definitions cache file path ("" disables caching)
	PollInterval    time.Duration // Remote poll interval
	DefinitionsFile string        // Local definitions file (file data source / dev server seed)
	HTTPAddr        string        // Dev server bind address (e.g. ":8080")
	AdminAPIKey     string        // Dev server admin key for definition replacement
	RateLimitPerIP  int           // Dev server per-IP request limit per minute
	QAMode          bool          // Start clients in QA mode
}

// Load reads configuration from environment variables and .env file (if present).
// Environment variables take precedence over .env file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env") // Optional; silently ignored if file doesn't exist
	_ = v.ReadInConfig()    // Ignore error - .env is optional
	v.AutomaticEnv()

	setDefaults(v)

	return &Config{
		AppEnv:          v.GetString("APP_ENV"),
		APIURL:          v.GetString("GOBUCKET_API_URL"),
		APIKey:          v.GetString("GOBUCKET_API_KEY"),
		CacheFile:       v.GetString("GOBUCKET_CACHE_FILE"),
		PollInterval:    v.GetDuration("GOBUCKET_POLL_INTERVAL"),
		DefinitionsFile: v.GetString("GOBUCKET_DEFINITIONS_FILE"),
		HTTPAddr:        v.GetString("GOBUCKET_HTTP_ADDR"),
		AdminAPIKey:     v.GetString("ADMIN_API_KEY"),
		RateLimitPerIP:  v.GetInt("RATE_LIMIT_PER_IP"),
		QAMode:          v.GetBool("GOBUCKET_QA_MODE"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("GOBUCKET_API_URL", "http://localhost:8080")
	v.SetDefault("GOBUCKET_API_KEY", "")
	v.SetDefault("GOBUCKET_CACHE_FILE", "")
	v.SetDefault("GOBUCKET_POLL_INTERVAL", "60s")
	v.SetDefault("GOBUCKET_DEFINITIONS_FILE", "")
	v.SetDefault("GOBUCKET_HTTP_ADDR", ":8080")
	v.SetDefault("ADMIN_API_KEY", "admin-123") // Change in production!
	v.SetDefault("RATE_LIMIT_PER_IP", 100)
	v.SetDefault("GOBUCKET_QA_MODE", false)
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks that the configuration is usable, and applies stricter
// rules outside dev. Call it at startup to fail fast on misconfiguration.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return ValidationError{
			Field:   "GOBUCKET_HTTP_ADDR",
			Message: "HTTP server address cannot be empty",
		}
	}
	if c.PollInterval <= 0 {
		return ValidationError{
			Field:   "GOBUCKET_POLL_INTERVAL",
			Message: "poll interval must be positive",
		}
	}
	if c.APIURL == "" && c.DefinitionsFile == "" {
		return ValidationError{
			Field:   "GOBUCKET_API_URL",
			Message: "either a definitions endpoint or a definitions file is required",
		}
	}

	if c.AppEnv == "prod" || c.AppEnv == "production" {
		if c.AdminAPIKey == "admin-123" {
			return ValidationError{
				Field:   "ADMIN_API_KEY",
				Message: "default admin API key 'admin-123' is not allowed in production",
			}
		}
	}

	return nil
}
