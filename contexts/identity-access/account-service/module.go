package accounts

import (
	"log/slog"

	httpadapter "meridian/contexts/identity-access/account-service/adapters/http"
	"meridian/contexts/identity-access/account-service/adapters/memory"
	"meridian/contexts/identity-access/account-service/application/commands"
	"meridian/contexts/identity-access/account-service/application/queries"
	"meridian/contexts/identity-access/account-service/ports"
)

// Module is the account-service composition root exposed to runtime wiring.
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

// NewModule wires account use-cases and the transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	register := commands.RegisterAccountUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	deactivate := commands.DeactivateAccountUseCase{
		Repository:  deps.Repository,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	getAccount := queries.GetAccountUseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}

	handler := httpadapter.Handler{
		Register:   register,
		Deactivate: deactivate,
		GetAccount: getAccount,
		Logger:     deps.Logger,
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
