package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/buzzrelay/internal/api/response"
	"github.com/mcoot/buzzrelay/internal/session"
)

// StatsReader reports live connection counts
type StatsReader interface {
	Stats(ctx context.Context) (session.Stats, error)
}

// HealthHandler handles the health check
type HealthHandler struct {
	stats StatsReader
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(stats StatsReader) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Connections: stats.Connections,
		Rooms:       stats.Rooms,
	})
}
