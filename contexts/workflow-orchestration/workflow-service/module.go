package workflows

import (
	"log/slog"

	httpadapter "meridian/contexts/workflow-orchestration/workflow-service/adapters/http"
	"meridian/contexts/workflow-orchestration/workflow-service/adapters/memory"
	"meridian/contexts/workflow-orchestration/workflow-service/application/commands"
	"meridian/contexts/workflow-orchestration/workflow-service/application/queries"
	"meridian/contexts/workflow-orchestration/workflow-service/ports"
)

// Module is the workflow-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies captures all runtime ports required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires workflow use-cases and the transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	start := commands.StartWorkflowUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	advance := commands.AdvanceWorkflowUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	getRun := queries.GetRunUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}

	handler := httpadapter.Handler{
		Start:   start,
		Advance: advance,
		GetRun:  getRun,
		Logger:  deps.Logger,
	}

	return Module{
		Handler: handler,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
