// Package api assembles the EvyRoad HTTP API.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ssoward/evyroad/internal/api/handler"
	"github.com/ssoward/evyroad/internal/api/middleware"
	"github.com/ssoward/evyroad/internal/auth"
	"github.com/ssoward/evyroad/internal/certification"
	"github.com/ssoward/evyroad/internal/route"
	"github.com/ssoward/evyroad/internal/stream"
	"github.com/ssoward/evyroad/internal/trip"
)

// RouterConfig holds everything the router needs to assemble the API.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	// RequireTLS rejects plain-HTTP requests behind the load balancer.
	RequireTLS bool
	// EnableDevToken mounts the POST /auth/token endpoint; never set
	// in production.
	EnableDevToken bool

	Metrics *middleware.Metrics
	Probes  map[string]handler.ReadinessProbe

	JWTService    *auth.JWTService
	TripService   *trip.Service
	StatsService  *trip.StatsService
	RouteCatalog  *route.Catalog
	CertService   *certification.Service
	StreamHandler *stream.Handler
}

// NewRouter wires the middleware chain and all API routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.RequireJSON)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Probes)
	authHandler := handler.NewAuthHandler(cfg.JWTService)
	tripHandler := handler.NewTripHandler(cfg.TripService, cfg.StatsService)
	routeHandler := handler.NewRouteHandler(cfg.RouteCatalog)
	certHandler := handler.NewCertificationHandler(cfg.CertService)

	authMiddleware := middleware.Auth(cfg.JWTService)

	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)
	expensiveRateLimit := middleware.RateLimitByUser(middleware.ExpensiveRateLimit)

	r.Route("/api/v1", func(r chi.Router) {
		// Ops endpoints (public).
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Development token issuance (public, tightly limited).
		if cfg.EnableDevToken {
			r.With(authRateLimit).Post("/auth/token", authHandler.IssueToken)
		}

		// Route catalog (authenticated).
		r.Route("/routes", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", routeHandler.List)
			r.Get("/{id}", routeHandler.Get)
		})

		// Trips (authenticated).
		r.Route("/trips", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", tripHandler.List)
			r.Post("/", tripHandler.Create)
			r.With(expensiveRateLimit).Get("/search", tripHandler.Search)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tripHandler.Get)
				r.Patch("/", tripHandler.Update)
				r.Delete("/", tripHandler.Delete)
				r.Get("/track", tripHandler.Track)
				r.Post("/waypoints", tripHandler.AddWaypoint)
				r.Post("/photos", tripHandler.AddPhoto)
				r.Post("/weather", tripHandler.RecordWeather)
			})
		})

		// Rider statistics (authenticated, history scan).
		r.With(authMiddleware, expensiveRateLimit).Get("/stats/me", tripHandler.Stats)

		// Certification workflow (authenticated).
		r.Route("/certifications", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Post("/", certHandler.Start)
			r.Get("/me", certHandler.ListMine)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", certHandler.Get)
				r.Post("/waypoints", certHandler.CheckIn)
				r.Post("/submit", certHandler.Submit)
				r.Post("/review", certHandler.Review)
			})
		})

		// Live trip stream (authenticated, upgrades to WebSocket).
		if cfg.StreamHandler != nil {
			r.With(authMiddleware).Get("/stream/trips/{id}", cfg.StreamHandler.ServeTrip)
		}
	})

	return r
}
