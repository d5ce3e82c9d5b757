package server

import (
	"context"
	"net/http"
	"time"

	"groovy/dto"
	"groovy/logger"
)

// HealthHandler reports the service and database state. It always answers 200.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "UP"
	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("database health check failed", logger.ErrorField(err))
		database = "DOWN"
	}
	writeJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "UP",
		Timestamp: time.Now(),
		Database:  database,
	})
}
