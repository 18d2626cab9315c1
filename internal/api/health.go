package api

import (
	"net/http"
	"time"

	"github.com/dialectdeck/ledger/internal/api/respond"
	"github.com/dialectdeck/ledger/internal/health"
)

// HealthReporter is the cached view of service health that the handler reads.
type HealthReporter interface {
	IsHealthy() bool
	Components() []health.ComponentStatus
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	reporter HealthReporter
}

// NewHealthHandler creates a new health handler. A nil reporter always
// reports unhealthy.
func NewHealthHandler(reporter HealthReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	components := []health.ComponentStatus{}
	if h.reporter != nil {
		if h.reporter.IsHealthy() {
			status = "healthy"
		}
		components = h.reporter.Components()
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
