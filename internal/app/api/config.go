package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	ordermessaging "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/adapters/messaging"
	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port               string
	Environment        string
	PostgresDSN        string
	AutoMigrate        bool
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	KafkaBrokers       string
	KafkaOrdersTopic   string
	ReserveStock       bool
	LookupConcurrency  int
	CORSAllowedOrigins []string
}

// LoadConfig reads a .env file when present, then environment variables,
// applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		Environment:        envDefault("ENVIRONMENT", "development"),
		PostgresDSN:        envDefault("POSTGRES_DSN", strings.TrimSpace(os.Getenv("DATABASE_URL"))),
		AutoMigrate:        isTruthy(envDefault("DB_AUTO_MIGRATE", "true")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		KafkaBrokers:       strings.TrimSpace(os.Getenv("KAFKA_BROKERS")),
		KafkaOrdersTopic:   envDefault("KAFKA_ORDERS_TOPIC", ordermessaging.DefaultTopic),
		ReserveStock:       isTruthy(os.Getenv("ORDER_RESERVE_STOCK")),
		LookupConcurrency:  orderapp.DefaultLookupConcurrency,
		CORSAllowedOrigins: splitList(envDefault("CORS_ALLOWED_ORIGINS", "*")),
	}
	if raw := strings.TrimSpace(os.Getenv("ORDER_LOOKUP_CONCURRENCY")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("ORDER_LOOKUP_CONCURRENCY must be a positive integer")
		}
		cfg.LookupConcurrency = n
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	return cfg, nil
}

// Production reports whether the process runs with production defaults.
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
