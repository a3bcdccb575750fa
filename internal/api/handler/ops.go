// Package handler provides HTTP handlers for the status API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rialtas/statuspage/internal/api/models"
	"github.com/rialtas/statuspage/internal/api/response"
)

// Pinger checks connectivity to the datastore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	pinger    Pinger
}

// NewOpsHandler creates a new OpsHandler. pinger may be nil, in which case
// the readiness check reports OK without a dependency check.
func NewOpsHandler(version, buildTime string, pinger Pinger) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		pinger:    pinger,
	}
}

// HealthCheck handles GET /health - liveness only, touches no other component.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /ready - readiness including the datastore.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}
