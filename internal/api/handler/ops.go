// Package handler provides HTTP handlers for the slanglate API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/slanglate/slanglate/internal/api/models"
	"github.com/slanglate/slanglate/internal/api/response"
	"github.com/slanglate/slanglate/internal/provider/resilience"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	providers *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. db and providers are optional;
// when nil the corresponding readiness sections are omitted.
func NewOpsHandler(version, buildTime string, db Pinger, providers *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
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

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Reports
// database connectivity and translation provider circuit state. A broken
// database fails readiness; a degraded provider only marks it DEGRADED,
// because the quota and usage endpoints still work without it.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	ready := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		dbStatus := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			ready.Status = models.HealthStatusFail
		}
		ready.Subsystems = append(ready.Subsystems, dbStatus)
	}

	if h.providers != nil {
		for _, ph := range h.providers.GetAllHealth() {
			status := models.HealthStatusOK
			switch {
			case ph.IsUnhealthy():
				status = models.HealthStatusFail
			case ph.IsDegraded():
				status = models.HealthStatusDegraded
			}
			if status != models.HealthStatusOK && ready.Status == models.HealthStatusOK {
				ready.Status = models.HealthStatusDegraded
			}

			ps := models.ProviderStatus{Provider: ph.Name, Status: status}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				ps.LastSuccessAt = &ts
			}
			if ph.LastFailureAt != nil {
				ts := models.Timestamp(*ph.LastFailureAt)
				ps.LastFailureAt = &ts
			}
			if ph.LastError != "" {
				msg := ph.LastError
				ps.Message = &msg
			}
			ready.Providers = append(ready.Providers, ps)
		}
	}

	status := http.StatusOK
	if ready.Status == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, ready)
}
