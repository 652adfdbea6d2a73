package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// Environment selects development or production behavior. In production
	// internal error details are suppressed from HTTP responses.
	Environment string `mapstructure:"environment" validate:"required,oneof=development production"`

	// AllowedOrigins lists the origins permitted by CORS. An empty list
	// disables cross-origin access.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// RateLimit is the number of requests allowed per client IP per
	// RateLimitWindow on the API routes.
	RateLimit       int           `mapstructure:"rate_limit"        validate:"gte=0"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

// IsProduction reports whether the server runs in production mode.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}
