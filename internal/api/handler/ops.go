package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ssoward/evyroad/internal/api/models"
	"github.com/ssoward/evyroad/internal/api/response"
)

// ReadinessProbe checks one dependency; a non-nil error marks the
// service not ready.
type ReadinessProbe func(ctx context.Context) error

// OpsHandler serves the liveness and readiness endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	probes    map[string]ReadinessProbe
}

// NewOpsHandler creates an OpsHandler. probes may be nil.
func NewOpsHandler(version, buildTime string, probes map[string]ReadinessProbe) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		probes:    probes,
	}
}

// HealthCheck handles GET /ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /ops/ready, probing each registered
// dependency with a short deadline.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	details := make(map[string]interface{}, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			health.Status = models.HealthStatusFail
			details[name] = err.Error()
		} else {
			details[name] = "ok"
		}
	}
	if len(details) > 0 {
		health.Details = details
	}

	status := http.StatusOK
	if health.Status != models.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, health)
}
