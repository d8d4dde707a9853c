// Package api provides the HTTP API for slanglate.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/slanglate/slanglate/internal/admission"
	"github.com/slanglate/slanglate/internal/analytics"
	"github.com/slanglate/slanglate/internal/api/handler"
	"github.com/slanglate/slanglate/internal/api/middleware"
	"github.com/slanglate/slanglate/internal/device"
	"github.com/slanglate/slanglate/internal/provider/resilience"
	"github.com/slanglate/slanglate/internal/purchase"
	"github.com/slanglate/slanglate/internal/quota"
	"github.com/slanglate/slanglate/internal/translate"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Decider    *admission.Decider
	Translator *translate.Service
	Devices    *device.Service
	Purchases  *purchase.Service
	Reporter   quota.Reporter
	Analytics  analytics.Publisher
	DB         handler.Pinger
	Providers  *resilience.Registry
	DeviceAuth middleware.DeviceAuthConfig
	AdminKey   string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "slanglate-api"
	}

	publisher := cfg.Analytics
	if publisher == nil {
		publisher = analytics.NopPublisher{}
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Providers)
	translateHandler := handler.NewTranslateHandler(cfg.Decider, cfg.Translator, publisher, cfg.Logger)
	usageHandler := handler.NewUsageHandler(cfg.Decider, cfg.Reporter, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.Devices, cfg.Purchases, publisher, cfg.Logger)

	deviceAuth := middleware.DeviceAuth(cfg.DeviceAuth)
	adminAuth := middleware.AdminAuth(cfg.AdminKey)

	// Rate limit tiers. The translate budget is deliberately tight; the
	// daily quota is the real limit and the per-minute window only blunts
	// bursts.
	translateRateLimit := middleware.RateLimitByDevice(middleware.TranslateRateLimit) // 4 req/min
	testRateLimit := middleware.RateLimitByDevice(middleware.TestRateLimit)           // 20 req/min
	standardRateLimit := middleware.RateLimitByDevice(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Translation endpoints (device auth)
		r.Route("/translate", func(r chi.Router) {
			r.Use(deviceAuth)
			r.With(translateRateLimit).Post("/", translateHandler.Translate)
			r.With(testRateLimit).Post("/test", translateHandler.TranslateTest)
		})

		// Usage endpoints
		r.Route("/usage", func(r chi.Router) {
			// Admin reporting (shared key, no device identity)
			r.Route("/admin", func(r chi.Router) {
				r.Use(adminAuth)
				r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))
				r.Get("/stats", usageHandler.AdminStats)
				r.Get("/devices", usageHandler.AdminDevices)
			})

			r.Group(func(r chi.Router) {
				r.Use(deviceAuth)
				r.With(standardRateLimit).Get("/", usageHandler.Usage)
				r.With(testRateLimit).Post("/test", usageHandler.UsageTest)
			})
		})

		// Device record and upgrade (device auth)
		r.Route("/user", func(r chi.Router) {
			r.Use(deviceAuth)
			r.Use(standardRateLimit)
			r.Get("/", userHandler.GetUser)
			r.Post("/upgrade", userHandler.Upgrade)
		})
	})

	return r
}
