package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/services"
)

// HealthService reports dataset readiness.
type HealthService interface {
	Health(ctx context.Context) services.HealthInfo
}

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	service HealthService
	version string
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service HealthService, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
	}
}

// Routes returns the chi router for the health endpoints.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetHealth)
	r.Get("/ready", h.GetReadiness)
	return r
}

// GetHealth handles GET /api/health. Always 200: the process being up is
// the liveness signal, dataset state rides along as detail.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	info := h.service.Health(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"dataset": info,
	})
}

// GetReadiness handles GET /api/health/ready. Returns 503 until the
// dataset loads, so orchestrators hold traffic while archives are broken.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	info := h.service.Health(r.Context())

	status := http.StatusOK
	state := "ready"
	if !info.DatasetLoaded {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"status":  state,
		"dataset": info,
	})
}
