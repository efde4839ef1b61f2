package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN",
		"RELAY_BATCH_SIZE", "RELAY_POLL_INTERVAL", "RELAY_MAX_ATTEMPTS",
		"RELAY_BACKOFF_BASE_SECONDS", "RELAY_BACKOFF_CAP_EXPONENT",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "meridian" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RelayBatchSize != 50 || cfg.RelayMaxAttempts != 5 {
		t.Fatalf("unexpected relay defaults: %+v", cfg)
	}
	if cfg.RelayPollInterval != 5*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.RelayPollInterval)
	}
	if cfg.RelayBackoffBaseSeconds != 2 || cfg.RelayBackoffCapExponent != 6 {
		t.Fatalf("unexpected backoff defaults: %+v", cfg)
	}
}

func TestLoadReadsRelayTunables(t *testing.T) {
	t.Setenv("RELAY_BATCH_SIZE", "25")
	t.Setenv("RELAY_POLL_INTERVAL", "2s")
	t.Setenv("RELAY_MAX_ATTEMPTS", "8")
	t.Setenv("RELAY_BACKOFF_BASE_SECONDS", "3")
	t.Setenv("RELAY_BACKOFF_CAP_EXPONENT", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.RelayBatchSize != 25 || cfg.RelayMaxAttempts != 8 {
		t.Fatalf("unexpected relay tunables: %+v", cfg)
	}
	if cfg.RelayPollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.RelayPollInterval)
	}
	if cfg.RelayBackoffBaseSeconds != 3 || cfg.RelayBackoffCapExponent != 4 {
		t.Fatalf("unexpected backoff tunables: %+v", cfg)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RELAY_BATCH_SIZE", "not-a-number")
	t.Setenv("RELAY_MAX_ATTEMPTS", "-3")
	t.Setenv("RELAY_POLL_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.RelayBatchSize != 50 || cfg.RelayMaxAttempts != 5 || cfg.RelayPollInterval != 5*time.Second {
		t.Fatalf("malformed values must fall back to defaults: %+v", cfg)
	}
}
