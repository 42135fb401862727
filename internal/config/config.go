package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvProduction = "production"

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret    string
	JWTExpiresIn time.Duration

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	RedisAddr     string
	RedisPassword string

	NomodAPIKey     string
	NomodBaseURL    string
	NomodTimeout    time.Duration
	PaymentCurrency string
	FrontendURL     string

	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	SMTPTimeout time.Duration
	FromEmail   string

	AllowDevOTP        bool
	EnableTestPayments bool
	DiscountModel      string
	CORSOrigins        string
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// TestPaymentsAllowed gates the test payment shortcut.
func (c *Config) TestPaymentsAllowed() bool {
	return c.EnableTestPayments && !c.IsProduction()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "harvest.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "168h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "harvest.orders")
	v.SetDefault("RABBITMQ_QUEUE", "order_notifications")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("NOMOD_API_KEY", "")
	v.SetDefault("NOMOD_BASE_URL", "https://api.nomod.com")
	v.SetDefault("NOMOD_TIMEOUT", "15s")
	v.SetDefault("PAYMENT_CURRENCY", "AED")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_TIMEOUT", "15s")
	v.SetDefault("FROM_EMAIL", "no-reply@harvest.local")
	v.SetDefault("ALLOW_DEV_OTP", false)
	v.SetDefault("ENABLE_TEST_PAYMENTS", false)
	v.SetDefault("DISCOUNT_MODEL", "percentage")
	v.SetDefault("CORS_ORIGINS", "*")
}

// Load reads configuration from an optional config file in the working
// directory and from the environment, environment taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		AppEnv:             v.GetString("APP_ENV"),
		DatabaseDriver:     strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpiresIn:       v.GetDuration("JWT_EXPIRES_IN"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:   v.GetString("RABBITMQ_EXCHANGE"),
		RabbitMQQueue:      v.GetString("RABBITMQ_QUEUE"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		NomodAPIKey:        v.GetString("NOMOD_API_KEY"),
		NomodBaseURL:       strings.TrimRight(v.GetString("NOMOD_BASE_URL"), "/"),
		NomodTimeout:       v.GetDuration("NOMOD_TIMEOUT"),
		PaymentCurrency:    v.GetString("PAYMENT_CURRENCY"),
		FrontendURL:        strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetInt("SMTP_PORT"),
		SMTPUser:           v.GetString("SMTP_USER"),
		SMTPPass:           v.GetString("SMTP_PASS"),
		SMTPTimeout:        v.GetDuration("SMTP_TIMEOUT"),
		FromEmail:          v.GetString("FROM_EMAIL"),
		AllowDevOTP:        v.GetBool("ALLOW_DEV_OTP"),
		EnableTestPayments: v.GetBool("ENABLE_TEST_PAYMENTS"),
		DiscountModel:      strings.ToLower(v.GetString("DISCOUNT_MODEL")),
		CORSOrigins:        v.GetString("CORS_ORIGINS"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev_jwt_secret"
	}
	if cfg.JWTExpiresIn <= 0 {
		cfg.JWTExpiresIn = 7 * 24 * time.Hour
	}
	if cfg.NomodTimeout <= 0 {
		cfg.NomodTimeout = 15 * time.Second
	}
	return cfg, nil
}
