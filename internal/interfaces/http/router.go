// Package http exposes the portal API over gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/InsureDoc-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// RouterConfig aggregates the handlers and middleware dependencies of the
// route tree.  Nil handlers leave their routes unmounted.
type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	DocumentHandler   *handlers.DocumentHandler
	ClaimHandler      *handlers.ClaimHandler
	AnnotationHandler *handlers.AnnotationHandler
	HealthHandler     *handlers.HealthHandler

	TokenVerifier middleware.TokenVerifier
	// RateLimiter is optional; without it requests are not limited.
	RateLimiter    middleware.Limiter
	HTTPMetrics    middleware.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string

	CORS    middleware.CORSConfig
	Logging middleware.LoggingConfig
	Logger  logging.Logger
}

// NewRouter builds the gin engine: global middleware, the public routes and
// the bearer-authenticated API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.HTTPMetrics != nil {
		r.Use(middleware.Metrics(cfg.HTTPMetrics))
	}

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, errors.New(errors.ErrCodeNotFound, "Not Found"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, middleware.ErrorBody{Detail: "Method Not Allowed", Code: string(errors.ErrCodeBadRequest)})
	})

	if h := cfg.HealthHandler; h != nil {
		r.GET("/", h.Root)
		r.GET("/healthz", h.Liveness)
		r.GET("/readyz", h.Readiness)
	}
	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	limited := func() []gin.HandlerFunc {
		if cfg.RateLimiter == nil {
			return nil
		}
		return []gin.HandlerFunc{middleware.RateLimit(cfg.RateLimiter, cfg.Logger)}
	}

	// Login and registration are limited per client IP.
	public := r.Group("/auth", limited()...)
	registerPublicAuthRoutes(public, cfg.AuthHandler)

	if cfg.TokenVerifier == nil {
		return r
	}
	// Everything else is limited per tenant.
	api := r.Group("", append([]gin.HandlerFunc{middleware.Auth(cfg.TokenVerifier)}, limited()...)...)
	registerAccountRoutes(api, cfg.AuthHandler)
	registerDocumentRoutes(api, cfg.DocumentHandler)
	registerClaimRoutes(api, cfg.ClaimHandler)
	registerAnnotationRoutes(api, cfg.AnnotationHandler)
	return r
}

func registerPublicAuthRoutes(g *gin.RouterGroup, h *handlers.AuthHandler) {
	if h == nil {
		return
	}
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

func registerAccountRoutes(g *gin.RouterGroup, h *handlers.AuthHandler) {
	if h == nil {
		return
	}
	g.GET("/auth/me", h.Me)
	g.POST("/auth/logout", h.Logout)
}

func registerDocumentRoutes(g *gin.RouterGroup, h *handlers.DocumentHandler) {
	if h == nil {
		return
	}
	g.POST("/policy-summary/summarize", h.Summarize)
	g.POST("/doc-classify/classify", h.Classify)
	g.POST("/doc-classify/analyze", h.Analyze)

	docs := g.Group("/documents")
	docs.GET("", h.List)
	docs.GET("/:id", h.Get)
	docs.GET("/:id/download", h.Download)
	docs.POST("/:id/annotate", h.Annotate)
}

func registerClaimRoutes(g *gin.RouterGroup, h *handlers.ClaimHandler) {
	if h == nil {
		return
	}
	g.POST("/fraud-detection/score", h.Score)
	g.GET("/fraud-detection/assessments", h.History)
}

func registerAnnotationRoutes(g *gin.RouterGroup, h *handlers.AnnotationHandler) {
	if h == nil {
		return
	}
	g.POST("/annotate", h.Annotate)
}
