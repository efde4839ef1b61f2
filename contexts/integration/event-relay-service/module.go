package eventrelay

import (
	"log/slog"
	"time"

	"meridian/contexts/integration/event-relay-service/adapters/memory"
	"meridian/contexts/integration/event-relay-service/application"
	"meridian/contexts/integration/event-relay-service/application/workers"
	"meridian/contexts/integration/event-relay-service/domain/services"
	"meridian/contexts/integration/event-relay-service/ports"
)

// Module is the event-relay composition root exposed to runtime wiring.
type Module struct {
	Dispatcher workers.Dispatcher
	Registry   *application.Registry
	Stats      ports.OutboxStatsReader
	Store      *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Outbox       ports.OutboxStore
	Stats        ports.OutboxStatsReader
	Registry     *application.Registry
	Clock        ports.Clock
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
	Backoff      services.BackoffPolicy
	Logger       *slog.Logger
}

// NewModule wires the dispatcher worker using explicit ports. The registry is
// expected to be fully populated by the caller before the worker starts.
func NewModule(deps Dependencies) Module {
	registry := deps.Registry
	if registry == nil {
		registry = application.NewRegistry()
	}

	dispatcher := workers.Dispatcher{
		Outbox:       deps.Outbox,
		Registry:     registry,
		Clock:        deps.Clock,
		BatchSize:    deps.BatchSize,
		PollInterval: deps.PollInterval,
		MaxAttempts:  deps.MaxAttempts,
		Backoff:      deps.Backoff,
		Logger:       deps.Logger,
	}

	return Module{
		Dispatcher: dispatcher,
		Registry:   registry,
		Stats:      deps.Stats,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Outbox:  store,
		Stats:   store,
		Clock:   store,
		Backoff: services.DefaultBackoffPolicy(),
		Logger:  logger,
	})
	module.Store = store
	return module
}
