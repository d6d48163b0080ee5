package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	detector service.Detector
	redis    *redis.Client
}

// NewHealthHandler creates a new health handler.
// A nil redis client is reported as "not configured".
func NewHealthHandler(detector service.Detector, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		detector: detector,
		redis:    redis,
	}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status       string            `json:"status"`
	ModelVersion string            `json:"model_version,omitempty"`
	Components   map[string]string `json:"components"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string)
	healthy := true
	var modelVersion string

	// Check detector
	if h.detector != nil {
		if err := h.detector.Ready(ctx); err != nil {
			components["detector"] = "error: " + err.Error()
			healthy = false
		} else {
			components["detector"] = "ok"
			modelVersion = h.modelVersion(ctx, components)
		}
	} else {
		components["detector"] = "not configured"
		healthy = false
	}

	// Check Redis; the cache is optional so a failure only degrades
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = "error: " + err.Error()
		} else {
			components["redis"] = "ok"
		}
	} else {
		components["redis"] = "not configured"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthStatus{
		Status:       status,
		ModelVersion: modelVersion,
		Components:   components,
	})
}

// modelVersion asks the detector for its model name when it can report one.
// A failed lookup is recorded as a component but does not fail the check.
func (h *HealthHandler) modelVersion(ctx context.Context, components map[string]string) string {
	describer, ok := h.detector.(service.ModelDescriber)
	if !ok {
		return ""
	}

	version, err := describer.ModelVersion(ctx)
	if err != nil {
		components["model"] = "error: " + err.Error()
		return ""
	}
	components["model"] = "ok"
	return version
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if h.detector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "detector not configured"})
		return
	}
	if err := h.detector.Ready(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "detector unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
