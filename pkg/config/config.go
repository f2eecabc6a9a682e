package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
// It is built once at startup and handed to components explicitly.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`
	LogFile   string `mapstructure:"LOG_FILE"`

	// Messaging API credential and the fixed recipient. Both are mandatory.
	TelegramToken  string        `mapstructure:"TELEGRAM_TOKEN" validate:"required"`
	TelegramChatID string        `mapstructure:"TELEGRAM_CHAT_ID" validate:"required"`
	TelegramAPIURL string        `mapstructure:"TELEGRAM_API_URL" validate:"required,url"`
	SendTimeout    time.Duration `mapstructure:"SEND_TIMEOUT" validate:"required"`
	SendMaxRetries int           `mapstructure:"SEND_MAX_RETRIES" validate:"gte=0,lte=10"`

	CORSAllowedOrigins    []string `mapstructure:"CORS_ALLOWED_ORIGINS" validate:"dive,url"`
	CORSAllowedSubstrings []string `mapstructure:"CORS_ALLOWED_SUBSTRINGS" validate:"dive,required"`
	CORSPermissive        bool     `mapstructure:"CORS_PERMISSIVE"`

	MaxBodyBytes   int64   `mapstructure:"MAX_BODY_BYTES" validate:"gte=1"`
	MaxInFlight    int     `mapstructure:"MAX_IN_FLIGHT" validate:"gte=1,lte=100000"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST" validate:"gte=1"`
	// TrustedProxies may supply X-Forwarded-For for rate limiting. Empty means
	// clients are keyed on the connection address only.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" validate:"dive,cidr|ip"`

	AdminJWTSecret string `mapstructure:"ADMIN_JWT_SECRET"`

	MirrorEnabled bool    `mapstructure:"MIRROR_ENABLED"`
	MirrorLevel   string  `mapstructure:"MIRROR_LEVEL" validate:"required,oneof=debug info warn error"`
	MirrorRPS     float64 `mapstructure:"MIRROR_RPS" validate:"gt=0"`

	RedisAddr         string `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY" validate:"gte=1,lte=1000"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER" validate:"required,oneof=stdout otlp"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// keys lists every setting bound from the environment.
var keys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"PORT",
	"SHUTDOWN_TIMEOUT",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"LOG_FILE",
	"TELEGRAM_API_URL",
	"SEND_TIMEOUT",
	"SEND_MAX_RETRIES",
	"CORS_ALLOWED_ORIGINS",
	"CORS_ALLOWED_SUBSTRINGS",
	"CORS_PERMISSIVE",
	"MAX_BODY_BYTES",
	"MAX_IN_FLIGHT",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"TRUSTED_PROXIES",
	"ADMIN_JWT_SECRET",
	"MIRROR_ENABLED",
	"MIRROR_LEVEL",
	"MIRROR_RPS",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"WORKER_CONCURRENCY",
	"TRACING_ENABLED",
	"TRACING_EXPORTER",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "logs/relay.log")
	v.SetDefault("TELEGRAM_API_URL", "https://api.telegram.org")
	v.SetDefault("SEND_TIMEOUT", "10s")
	v.SetDefault("SEND_MAX_RETRIES", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_SUBSTRINGS", "")
	v.SetDefault("CORS_PERMISSIVE", false)
	v.SetDefault("MAX_BODY_BYTES", 64<<10)
	v.SetDefault("MAX_IN_FLIGHT", 256)
	v.SetDefault("RATE_LIMIT_RPS", 1)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("MIRROR_ENABLED", false)
	v.SetDefault("MIRROR_LEVEL", "warn")
	v.SetDefault("MIRROR_RPS", 0.2)
	v.SetDefault("WORKER_CONCURRENCY", 2)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	// Legacy variable names.
	_ = v.BindEnv("TELEGRAM_TOKEN", "TELEGRAM_TOKEN", "TOKEN")
	_ = v.BindEnv("TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID", "ADMIN_ID")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// PORT is what most PaaS runtimes inject; it only applies when HTTP_ADDR was
	// set neither in the environment nor in config.yaml.
	if port := v.GetString("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" && !v.InConfig("HTTP_ADDR") {
		c.HTTPAddr = net.JoinHostPort("0.0.0.0", port)
	}

	c.CORSAllowedOrigins = compact(c.CORSAllowedOrigins)
	c.CORSAllowedSubstrings = compact(c.CORSAllowedSubstrings)
	c.TrustedProxies = compact(c.TrustedProxies)

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &c, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// compact trims entries and drops empty ones, so "a, b,," parses as [a b].
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
