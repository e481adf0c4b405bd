package handlers

import (
	"net/http"

	"github.com/sigbus/sigbus/pkg/api/response"
	"github.com/sigbus/sigbus/pkg/dispatch"
	"github.com/sigbus/sigbus/pkg/router"
	"github.com/sigbus/sigbus/pkg/version"
)

// HealthHandler handles liveness, readiness, and status endpoints. The
// process is considered live as long as it's serving requests; it's
// ready once a Router and dispatch Registry have been wired in.
type HealthHandler struct {
	router   *router.Router
	registry *dispatch.Registry
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(rt *router.Router, registry *dispatch.Registry) *HealthHandler {
	return &HealthHandler{router: rt, registry: registry}
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ready := h.router != nil && h.registry != nil
	if ready {
		response.JSON(w, http.StatusOK, map[string]bool{"ready": true})
		return
	}
	response.JSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Info(),
	})
}
