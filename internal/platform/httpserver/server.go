package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	accounts "meridian/contexts/identity-access/account-service"
	relayports "meridian/contexts/integration/event-relay-service/ports"
	workflows "meridian/contexts/workflow-orchestration/workflow-service"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	accounts   accounts.Module
	workflows  workflows.Module
	relayStats relayports.OutboxStatsReader
}

func New(
	accountsModule accounts.Module,
	workflowsModule workflows.Module,
	relayStats relayports.OutboxStatsReader,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		accounts:   accountsModule,
		workflows:  workflowsModule,
		relayStats: relayStats,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /internal/relay/outbox/stats", s.handleRelayOutboxStats)

	s.mux.HandleFunc("POST /api/identity/v1/accounts", s.handleRegisterAccount)
	s.mux.HandleFunc("GET /api/identity/v1/accounts/{account_id}", s.handleGetAccount)
	s.mux.HandleFunc("POST /api/identity/v1/accounts/{account_id}/deactivate", s.handleDeactivateAccount)

	s.mux.HandleFunc("POST /api/workflow/v1/runs", s.handleStartWorkflow)
	s.mux.HandleFunc("GET /api/workflow/v1/runs/{run_id}", s.handleGetWorkflowRun)
	s.mux.HandleFunc("POST /api/workflow/v1/runs/{run_id}/advance", s.handleAdvanceWorkflow)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRelayOutboxStats(w http.ResponseWriter, r *http.Request) {
	if s.relayStats == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"code":    "stats_unavailable",
			"message": "relay stats reader is not wired",
		})
		return
	}

	stats, err := s.relayStats.Stats(r.Context(), time.Now().UTC())
	if err != nil {
		s.logger.Error("relay stats read failed",
			"event", "relay_stats_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pending_count":            stats.PendingCount,
		"delivered_count":          stats.DeliveredCount,
		"poisoned_count":           stats.PoisonedCount,
		"oldest_pending_age_secs": int64(stats.OldestPendingAge.Seconds()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
