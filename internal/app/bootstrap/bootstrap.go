package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	accounts "meridian/contexts/identity-access/account-service"
	accountpostgres "meridian/contexts/identity-access/account-service/adapters/postgres"
	accountports "meridian/contexts/identity-access/account-service/ports"
	eventrelay "meridian/contexts/integration/event-relay-service"
	relaypostgres "meridian/contexts/integration/event-relay-service/adapters/postgres"
	relayapp "meridian/contexts/integration/event-relay-service/application"
	"meridian/contexts/integration/event-relay-service/domain/services"
	workflows "meridian/contexts/workflow-orchestration/workflow-service"
	workflowpostgres "meridian/contexts/workflow-orchestration/workflow-service/adapters/postgres"
	workflowports "meridian/contexts/workflow-orchestration/workflow-service/ports"
	"meridian/internal/platform/config"
	"meridian/internal/platform/db"
	"meridian/internal/platform/httpserver"
	"meridian/internal/platform/messaging"
	"meridian/internal/shared/events"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	topicIdentityAccounts = "identity.accounts"
	topicWorkflowRuns     = "workflow.runs"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	relay    eventrelay.Module
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accountsModule := accounts.NewModule(accounts.Dependencies{
		Repository:  accountpostgres.NewRepository(pg.DB, logger),
		Clock:       accountpostgres.SystemClock{},
		IDGenerator: accountpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	workflowsModule := workflows.NewModule(workflows.Dependencies{
		Repository:  workflowpostgres.NewRepository(pg.DB, logger),
		Clock:       workflowpostgres.SystemClock{},
		IDGenerator: workflowpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	relayStats := relaypostgres.NewRepository(pg.DB, logger)

	server := httpserver.New(accountsModule, workflowsModule, relayStats, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	registry := relayapp.NewRegistry()
	if err := registerEventTypes(registry, bus); err != nil {
		_ = pg.Close()
		return nil, err
	}

	relayRepo := relaypostgres.NewRepository(pg.DB, logger)
	relayModule := eventrelay.NewModule(eventrelay.Dependencies{
		Outbox:       relayRepo,
		Stats:        relayRepo,
		Registry:     registry,
		Clock:        relaypostgres.SystemClock{},
		BatchSize:    cfg.RelayBatchSize,
		PollInterval: cfg.RelayPollInterval,
		MaxAttempts:  cfg.RelayMaxAttempts,
		Backoff: services.BackoffPolicy{
			BaseSeconds: cfg.RelayBackoffBaseSeconds,
			CapExponent: cfg.RelayBackoffCapExponent,
		},
		Logger: logger,
	})

	return &WorkerApp{
		postgres: pg,
		relay:    relayModule,
		logger:   logger,
	}, nil
}

// registerEventTypes binds every logical event type the platform produces to
// its decode + publish closure. One line per type; adding an event type means
// adding its registration here and nowhere else.
func registerEventTypes(registry *relayapp.Registry, bus *messaging.Bus) error {
	if err := relayapp.RegisterJSON(registry, accountports.EventTypeAccountRegistered,
		func(ctx context.Context, event accountports.AccountRegisteredEvent) error {
			return bus.Publish(ctx, topicIdentityAccounts, events.Envelope{
				EventID:        event.EventID,
				EventType:      accountports.EventTypeAccountRegistered,
				SourceService:  "identity-access/account-service",
				OccurredAtUTC:  event.RegisteredAt,
				PartitionKey:   event.AccountID,
				PayloadVersion: 1,
				Payload:        event,
			})
		}); err != nil {
		return err
	}
	if err := relayapp.RegisterJSON(registry, accountports.EventTypeAccountDeactivated,
		func(ctx context.Context, event accountports.AccountDeactivatedEvent) error {
			return bus.Publish(ctx, topicIdentityAccounts, events.Envelope{
				EventID:        event.EventID,
				EventType:      accountports.EventTypeAccountDeactivated,
				SourceService:  "identity-access/account-service",
				OccurredAtUTC:  event.DeactivatedAt,
				PartitionKey:   event.AccountID,
				PayloadVersion: 1,
				Payload:        event,
			})
		}); err != nil {
		return err
	}
	if err := relayapp.RegisterJSON(registry, workflowports.EventTypeRunStarted,
		func(ctx context.Context, event workflowports.RunStartedEvent) error {
			return bus.Publish(ctx, topicWorkflowRuns, events.Envelope{
				EventID:        event.EventID,
				EventType:      workflowports.EventTypeRunStarted,
				SourceService:  "workflow-orchestration/workflow-service",
				OccurredAtUTC:  event.StartedAt,
				PartitionKey:   event.RunID,
				PayloadVersion: 1,
				Payload:        event,
			})
		}); err != nil {
		return err
	}
	if err := relayapp.RegisterJSON(registry, workflowports.EventTypeRunAdvanced,
		func(ctx context.Context, event workflowports.RunAdvancedEvent) error {
			return bus.Publish(ctx, topicWorkflowRuns, events.Envelope{
				EventID:        event.EventID,
				EventType:      workflowports.EventTypeRunAdvanced,
				SourceService:  "workflow-orchestration/workflow-service",
				OccurredAtUTC:  event.AdvancedAt,
				PartitionKey:   event.RunID,
				PayloadVersion: 1,
				Payload:        event,
			})
		}); err != nil {
		return err
	}
	if err := relayapp.RegisterJSON(registry, workflowports.EventTypeRunCompleted,
		func(ctx context.Context, event workflowports.RunCompletedEvent) error {
			return bus.Publish(ctx, topicWorkflowRuns, events.Envelope{
				EventID:        event.EventID,
				EventType:      workflowports.EventTypeRunCompleted,
				SourceService:  "workflow-orchestration/workflow-service",
				OccurredAtUTC:  event.CompletedAt,
				PartitionKey:   event.RunID,
				PayloadVersion: 1,
				Payload:        event,
			})
		}); err != nil {
		return err
	}
	return nil
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"registered_event_types", w.relay.Registry.Len(),
	)
	w.relay.Dispatcher.Start(ctx)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
