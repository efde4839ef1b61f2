package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	RelayBatchSize          int
	RelayPollInterval       time.Duration
	RelayMaxAttempts        int
	RelayBackoffBaseSeconds int
	RelayBackoffCapExponent int
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "meridian"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RelayBatchSize:          envInt("RELAY_BATCH_SIZE", 50),
		RelayPollInterval:       envDuration("RELAY_POLL_INTERVAL", 5*time.Second),
		RelayMaxAttempts:        envInt("RELAY_MAX_ATTEMPTS", 5),
		RelayBackoffBaseSeconds: envInt("RELAY_BACKOFF_BASE_SECONDS", 2),
		RelayBackoffCapExponent: envInt("RELAY_BACKOFF_CAP_EXPONENT", 6),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
