// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	StorageExternal = "external"
	StorageMemory   = "memory"
)

const (
	TraceStdout = "stdout"
	TraceOTLP   = "otlp"
)

type Config struct {
	Port    string
	Storage string

	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration

	PaymentAPIURL        string
	PaymentSecretKey     string
	PaymentWebhookSecret string
	PaymentCurrency      string

	EnableTracing bool
	TraceExporter string
	CollectorAddr string
	LogLevel      logrus.Level

	AdminEmail    string
	AdminPassword string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustMapEnv(target *string, envKey string) {
	v := os.Getenv(envKey)
	if v == "" {
		panic(fmt.Sprintf("environment variable %q not set", envKey))
	}
	*target = v
}

// Load reads the configuration. Missing required variables panic, malformed
// values are returned as errors.
func Load() (cfg Config, err error) {
	cfg.Port = envOr("PORT", "8080")
	cfg.Storage = strings.ToLower(envOr("STORAGE", StorageExternal))
	if cfg.Storage != StorageExternal && cfg.Storage != StorageMemory {
		err = errors.Errorf("STORAGE must be %q or %q, got %q", StorageExternal, StorageMemory, cfg.Storage)
		return
	}

	if cfg.Storage == StorageExternal {
		mustMapEnv(&cfg.DatabaseHost, "DATABASE_HOST")
		mustMapEnv(&cfg.DatabasePort, "DATABASE_PORT")
		mustMapEnv(&cfg.DatabaseUser, "DATABASE_USER")
		mustMapEnv(&cfg.DatabaseName, "DATABASE_NAME")
		mustMapEnv(&cfg.RedisHost, "REDIS_HOST")
		mustMapEnv(&cfg.RedisPort, "REDIS_PORT")
		mustMapEnv(&cfg.MongoURI, "MONGO_URI")
	}
	cfg.DatabasePassword = os.Getenv("DATABASE_PASSWORD")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.MongoDatabase = envOr("MONGO_DATABASE", "badminton")

	mustMapEnv(&cfg.JWTSecret, "JWT_SECRET")
	if cfg.TokenTTL, err = time.ParseDuration(envOr("TOKEN_TTL", "24h")); err != nil {
		err = errors.Wrap(err, "TOKEN_TTL")
		return
	}
	if cfg.TokenTTL <= 0 {
		err = errors.New("TOKEN_TTL must be positive")
		return
	}

	cfg.PaymentAPIURL = envOr("PAYMENT_API_URL", "https://api.stripe.com")
	cfg.PaymentSecretKey = os.Getenv("PAYMENT_SECRET_KEY")
	cfg.PaymentWebhookSecret = os.Getenv("PAYMENT_WEBHOOK_SECRET")
	cfg.PaymentCurrency = strings.ToLower(envOr("PAYMENT_CURRENCY", "usd"))

	cfg.EnableTracing = os.Getenv("ENABLE_TRACING") == "1"
	cfg.TraceExporter = strings.ToLower(envOr("TRACE_EXPORTER", TraceStdout))
	if cfg.TraceExporter != TraceStdout && cfg.TraceExporter != TraceOTLP {
		err = errors.Errorf("TRACE_EXPORTER must be %q or %q, got %q", TraceStdout, TraceOTLP, cfg.TraceExporter)
		return
	}
	if cfg.EnableTracing && cfg.TraceExporter == TraceOTLP {
		mustMapEnv(&cfg.CollectorAddr, "COLLECTOR_SERVICE_ADDR")
	}
	if cfg.LogLevel, err = logrus.ParseLevel(envOr("LOG_LEVEL", "info")); err != nil {
		err = errors.Wrap(err, "LOG_LEVEL")
		return
	}

	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		err = errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	return
}

// PostgresURL builds the lib/pq connection string.
func (c Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DatabaseUser, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName)
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}
