package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
)

// HealthCheck probes one dependency; a nil error means healthy.
type HealthCheck func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks map[string]HealthCheck
	logger logging.Logger
}

// NewHealthHandler builds the handler.  Readiness runs every registered
// check; liveness never does.
func NewHealthHandler(checks map[string]HealthCheck, logger logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HealthHandler{checks: checks, logger: logger}
}

// Liveness reports that the process is up.
//
//	GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every dependency with a short per-check timeout and
// reports per-dependency status.  Any failing check yields 503.
//
//	GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	results := make(map[string]string, len(h.checks))
	healthy := true

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			h.logger.Warn("readiness check failed", logging.String("check", name), logging.Err(err))
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": results})
}
