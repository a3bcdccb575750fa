// Package api provides the HTTP API for the status page.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rialtas/statuspage/internal/api/handler"
	"github.com/rialtas/statuspage/internal/api/middleware"
	"github.com/rialtas/statuspage/internal/apikey"
	"github.com/rialtas/statuspage/internal/operator"
	"github.com/rialtas/statuspage/internal/status"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	Metrics        *middleware.Metrics
	Tracker        *status.Tracker
	Keys           *apikey.Service
	OperatorTokens *operator.TokenService
	Pinger         handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)      // Generate/propagate request ID first
	r.Use(middleware.Tracing())      // Distributed tracing
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
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Pinger)
	statusHandler := handler.NewStatusHandler(cfg.Tracker)
	adminHandler := handler.NewAdminHandler(cfg.Tracker, cfg.Keys)

	// Auth middleware
	apiKeyAuth := middleware.APIKeyAuth(cfg.Keys)
	operatorAuth := middleware.OperatorAuth(cfg.OperatorTokens)

	// Rate limit middleware for different endpoint categories
	writeRateLimit := middleware.RateLimitByKey(middleware.WriteRateLimit)       // 30 req/min per key
	standardRateLimit := middleware.RateLimitByKey(middleware.StandardRateLimit) // 100 req/min per key

	// Ops endpoints (public)
	r.Get("/health", opsHandler.HealthCheck)
	r.Get("/ready", opsHandler.ReadinessCheck)

	// Status endpoints (API key authenticated)
	r.Group(func(r chi.Router) {
		r.Use(apiKeyAuth)

		r.Route("/status-updates", func(r chi.Router) {
			r.With(writeRateLimit).Post("/", statusHandler.CreateStatusUpdate)
			r.With(standardRateLimit).Get("/", statusHandler.ListStatusUpdates)
			r.With(standardRateLimit).Get("/{updateId}", statusHandler.GetStatusUpdate)
		})

		r.Route("/services", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", statusHandler.ListServices)
			r.Get("/{serviceId}", statusHandler.GetService)
			r.Get("/{serviceId}/history", statusHandler.GetServiceHistory)
		})

		r.With(standardRateLimit).Get("/overall", statusHandler.Overall)
	})

	// Admin endpoints (operator authenticated) - for internal operations
	r.Route("/admin", func(r chi.Router) {
		r.Use(operatorAuth)
		r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))

		r.Post("/status-updates", adminHandler.CreateStatusUpdate)

		r.Route("/services", func(r chi.Router) {
			r.Get("/", adminHandler.ListServices)
			r.Post("/", adminHandler.CreateService)
			r.Route("/{serviceId}", func(r chi.Router) {
				r.Put("/", adminHandler.UpdateService)
				r.Delete("/", adminHandler.DeleteService)
			})
		})

		r.Route("/api-keys", func(r chi.Router) {
			r.Get("/", adminHandler.ListAPIKeys)
			r.Post("/", adminHandler.CreateAPIKey)
			r.Delete("/{keyId}", adminHandler.RevokeAPIKey)
		})
	})

	return r
}
