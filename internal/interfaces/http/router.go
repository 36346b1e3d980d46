package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MRM-Billing/internal/interfaces/http/handlers"
	"github.com/turtacn/MRM-Billing/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	BillingHandler *handlers.BillingHandler
	ReportHandler  *handlers.ReportHandler
	ClientHandler  *handlers.ClientHandler
	HealthHandler  *handlers.HealthHandler

	CORS      *middleware.CORSConfig
	RateLimit middleware.RateLimiter

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the gin engine: global middleware, probes, /metrics and
// the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(log, cfg.Metrics, middleware.DefaultLoggingConfig()))
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(cfg.RateLimit, middleware.DefaultRateLimitConfig()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerReportRoutes(api, cfg.ReportHandler)
	registerBillingRoutes(api, cfg.BillingHandler)
	registerClientRoutes(api, cfg.ClientHandler)
	return r
}

func registerBillingRoutes(api *gin.RouterGroup, h *handlers.BillingHandler) {
	if h == nil {
		return
	}
	b := api.Group("/billing")
	b.GET("", h.List)
	b.POST("", h.Save)
	b.GET("/:clientId/:month", h.Get)
	b.DELETE("/:clientId/:month", h.Delete)
	b.GET("/:clientId/:month/carry-in", h.CarryIn)
	b.PUT("/:clientId/:month/status", h.UpdateStatus)
}

func registerReportRoutes(api *gin.RouterGroup, h *handlers.ReportHandler) {
	if h == nil {
		return
	}
	b := api.Group("/billing")
	b.GET("/reports/summary", h.Summary)
	b.GET("/reports/client/:clientId", h.ClientReport)
	b.GET("/exports/:kind", h.Download)
	b.POST("/exports/:kind", h.Publish)
}

func registerClientRoutes(api *gin.RouterGroup, h *handlers.ClientHandler) {
	if h == nil {
		return
	}
	api.GET("/clients", h.List)
	api.GET("/clients/:clientId", h.Get)
}

//Personal.AI order the ending
