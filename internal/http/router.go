// Package httpapi wires the HTTP transport (Gin) to the catalog service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging with redaction, panic recovery,
// metrics, compression, CORS, security headers and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-waiter-catalog/docs"
	"github.com/tbourn/go-waiter-catalog/internal/config"
	"github.com/tbourn/go-waiter-catalog/internal/http/handlers"
	"github.com/tbourn/go-waiter-catalog/internal/http/middleware"
)

const (
	// maxBodyBytes caps request bodies. The API only takes bodiless POSTs.
	maxBodyBytes = 64 << 10

	// Reloads hit the data store, so each client gets a small separate budget.
	reloadRPS   = 0.2
	reloadBurst = 2
)

// Deps are the collaborators RegisterRoutes mounts.
type Deps struct {
	Catalog handlers.CatalogService
	// Registry receives HTTP metrics and backs /metrics. Nil means the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the catalog API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per client IP; health and metrics exempt)
//  8. gzip
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.Logger(middleware.LogOptions{MaskHeaders: []string{"X-API-Key"}}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 6) Prometheus metrics and /metrics endpoint
	var (
		reg      prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		reg, gatherer = deps.Registry, deps.Registry
	}
	r.Use(middleware.NewHTTPMetrics(reg).Handler())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP()).
		Exempt("/health", "/ready", "/metrics")
	r.Use(rl.Handler())

	// 8) Compression; Prometheus negotiates its own encoding
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 9) CORS posture (allow all if none configured) and security headers
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match"},
		ExposeHeaders:    []string{"X-Request-ID", "ETag", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		Revalidate:   true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness and readiness. Ready means a snapshot is being served.
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", func(c *gin.Context) {
		if !deps.Catalog.Status(c.Request.Context()).Loaded {
			handlers.Fail(c, http.StatusServiceUnavailable, handlers.ErrCodeUnavailable, "catalog is not loaded yet")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Catalog)
	reloadRL := middleware.NewRateLimiter(reloadRPS, reloadBurst, middleware.KeyByClientIP())

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/catalog/entries", h.ListEntries)
		api.GET("/catalog/entries/:id", h.GetEntry)
		api.GET("/catalog/facets", h.ListFacets)
		api.GET("/catalog/status", h.Status)
		api.POST("/catalog/reload", reloadRL.Handler(), h.Reload)
	}
}

// limitBody caps the request body at maxBytes. Declared oversize bodies are
// rejected up front with 413; undeclared ones fail when read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			handlers.Fail(c, http.StatusRequestEntityTooLarge, handlers.ErrCodeTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
