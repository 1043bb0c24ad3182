package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"obi-site/internal/container"
)

const healthCheckTimeout = 3 * time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. The record store decides healthy/unhealthy;
// a failing Redis only degrades.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	logger.Debug("Health check requested")

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "obi-site",
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	enquiries := h.container.Services.Enquiries
	if err := enquiries.Health(ctx); err != nil {
		logger.WithError(err).WithField("backend", enquiries.Backend()).Warn("Record store health check failed")
		response.Checks["store"] = "unhealthy"
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		response.Checks["store"] = "healthy"
	}

	if h.container.HasRedis() {
		if err := h.container.GetRedisClient().Health(ctx); err != nil {
			logger.WithError(err).Warn("Redis health check failed")
			response.Checks["redis"] = "unhealthy"
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
		} else {
			response.Checks["redis"] = "healthy"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode health check response")
		return
	}

	logger.Debug("Health check completed")
}
