package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"ledgercli/pkg/contracts"
)

// HealthHandler handles liveness requests.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// HealthCheck handles GET /healthz.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"version": contracts.GetVersionInfo(),
		"uptime":  time.Since(h.startedAt).String(),
	})
}
