// Package http assembles the apiserver's route tree and server lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/prometheus"
	"github.com/medlens/reviewsignal/internal/interfaces/http/handlers"
	"github.com/medlens/reviewsignal/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and cross-cutting pieces of the route
// tree.  Nil handlers leave their routes unregistered, which keeps tests
// free to wire only what they exercise.
type RouterConfig struct {
	ReviewHandler *handlers.ReviewHandler
	EventHandler  *handlers.EventHandler
	RunHandler    *handlers.RunHandler
	HealthHandler *handlers.HealthHandler

	Metrics prometheus.Collector
	Logger  logging.Logger
	Mode    string
}

// NewRouter builds the full gin engine: probe endpoints, metrics, and the
// versioned API group behind the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.ReviewHandler != nil {
			api.GET("/reviews/:text_index", cfg.ReviewHandler.Get)
		}
		if cfg.EventHandler != nil {
			api.GET("/markers", cfg.EventHandler.ListMarkers)
			api.GET("/treatment-changes", cfg.EventHandler.ListChanges)
		}
		if cfg.RunHandler != nil {
			api.POST("/runs", cfg.RunHandler.Create)
			api.GET("/runs/:id", cfg.RunHandler.Get)
		}
	}

	return r
}
