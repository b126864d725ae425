package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

const serviceName = "sunshine-ledger"

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "up",
		"service": serviceName,
	})
}

// Readiness reports whether the database is reachable, with the ping
// bounded by readinessTimeout.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	start := time.Now()
	status := "up"
	httpStatus := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		slog.Warn("readiness probe failed", "error", err)
		status = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	RespondJSON(w, httpStatus, map[string]any{
		"status":  status,
		"service": serviceName,
		"checks": map[string]any{
			"database": map[string]any{
				"status":     status,
				"latency_ms": time.Since(start).Milliseconds(),
			},
		},
	})
}
