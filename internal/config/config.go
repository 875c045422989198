package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Log     LogConfig
	Auth    AuthConfig
	Google  GoogleConfig
	Payment PaymentConfig
	Season  SeasonConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string   `envconfig:"SERVER_PORT" default:"3001"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	SecureCookies   bool     `envconfig:"SECURE_COOKIES" default:"false"` // set in production
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"storefront_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig holds token issuing configuration.
type AuthConfig struct {
	JWTSecret       string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"` // CHANGE IN PRODUCTION
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"60m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`
}

// GoogleConfig holds the Google OAuth client configuration. Sign-in via
// Google is disabled when ClientID is empty.
type GoogleConfig struct {
	ClientID     string        `envconfig:"GOOGLE_CLIENT_ID" default:""`
	ClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET" default:""`
	RedirectURL  string        `envconfig:"GOOGLE_REDIRECT_URI" default:""`
	StateTTL     time.Duration `envconfig:"OAUTH_STATE_TTL" default:"15m"`
	StateMax     int           `envconfig:"OAUTH_STATE_MAX" default:"4096"`
}

// Enabled reports whether a Google OAuth client is configured.
func (c GoogleConfig) Enabled() bool { return c.ClientID != "" }

// PaymentConfig holds the payment gateway credentials. The gateway sandbox
// is used unless PAYMENT_LIVE is set.
type PaymentConfig struct {
	StoreID       string        `envconfig:"PAYMENT_STORE_ID" default:""`
	StorePassword string        `envconfig:"PAYMENT_STORE_PASSWORD" default:""`
	Live          bool          `envconfig:"PAYMENT_LIVE" default:"false"`
	Timeout       time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"30s"`
}

// SeasonConfig controls which timezone the weekly season buckets follow.
type SeasonConfig struct {
	Timezone string `envconfig:"SEASON_TIMEZONE" default:"UTC"`
}

// Location resolves the configured timezone, falling back to UTC when the
// name does not resolve.
func (c SeasonConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
