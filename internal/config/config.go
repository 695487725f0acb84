package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Email    EmailConfig    `mapstructure:"email"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" envconfig:"SERVER_REQUEST_TIMEOUT"`
	RateLimit      float64       `mapstructure:"rate_limit" envconfig:"SERVER_RATE_LIMIT"`
	RateBurst      int           `mapstructure:"rate_burst" envconfig:"SERVER_RATE_BURST"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" envconfig:"REDIS_URL"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key" envconfig:"STRIPE_SECRET_KEY"`
}

// BookingConfig carries the salon-level knobs. Timezone is the wall-clock
// location booking times are interpreted in; the original deployment uses
// America/Phoenix (no DST).
type BookingConfig struct {
	Timezone string `mapstructure:"timezone" envconfig:"BOOKING_TIMEZONE"`
}

type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret" envconfig:"AUTH_JWT_SECRET"`
	TokenExpiryHours  int    `mapstructure:"token_expiry_hours" envconfig:"AUTH_TOKEN_EXPIRY_HOURS"`
	AdminEmail        string `mapstructure:"admin_email" envconfig:"AUTH_ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"admin_password_hash" envconfig:"AUTH_ADMIN_PASSWORD_HASH"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled" envconfig:"EMAIL_ENABLED"`
	Host     string `mapstructure:"host" envconfig:"EMAIL_HOST"`
	Port     int    `mapstructure:"port" envconfig:"EMAIL_PORT"`
	Username string `mapstructure:"username" envconfig:"EMAIL_USERNAME"`
	Password string `mapstructure:"password" envconfig:"EMAIL_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"EMAIL_FROM"`
}

type OutboxConfig struct {
	BatchSize    int           `mapstructure:"batch_size" envconfig:"OUTBOX_BATCH_SIZE"`
	PollInterval time.Duration `mapstructure:"poll_interval" envconfig:"OUTBOX_POLL_INTERVAL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.request_timeout", 30*time.Second)
	viper.SetDefault("server.rate_limit", 50.0)
	viper.SetDefault("server.rate_burst", 100)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("booking.timezone", "America/Phoenix")
	viper.SetDefault("auth.token_expiry_hours", 12)
	viper.SetDefault("outbox.batch_size", 50)
	viper.SetDefault("outbox.poll_interval", 5*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment variables override the file for deploy-time secrets.
	if err := envconfig.Process("", &config.Server); err != nil {
		return nil, fmt.Errorf("failed to process server env: %w", err)
	}
	if err := envconfig.Process("", &config.Database); err != nil {
		return nil, fmt.Errorf("failed to process database env: %w", err)
	}
	if err := envconfig.Process("", &config.Redis); err != nil {
		return nil, fmt.Errorf("failed to process redis env: %w", err)
	}
	if err := envconfig.Process("", &config.Stripe); err != nil {
		return nil, fmt.Errorf("failed to process stripe env: %w", err)
	}
	if err := envconfig.Process("", &config.Auth); err != nil {
		return nil, fmt.Errorf("failed to process auth env: %w", err)
	}
	if err := envconfig.Process("", &config.Email); err != nil {
		return nil, fmt.Errorf("failed to process email env: %w", err)
	}
	if err := envconfig.Process("", &config.Booking); err != nil {
		return nil, fmt.Errorf("failed to process booking env: %w", err)
	}
	if err := envconfig.Process("", &config.Outbox); err != nil {
		return nil, fmt.Errorf("failed to process outbox env: %w", err)
	}

	return &config, nil
}
