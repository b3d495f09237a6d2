// Package main provides the entrypoint for the EvyRoad API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ssoward/evyroad/internal/api"
	"github.com/ssoward/evyroad/internal/api/handler"
	"github.com/ssoward/evyroad/internal/api/middleware"
	"github.com/ssoward/evyroad/internal/auth"
	"github.com/ssoward/evyroad/internal/certification"
	"github.com/ssoward/evyroad/internal/config"
	"github.com/ssoward/evyroad/internal/database"
	"github.com/ssoward/evyroad/internal/route"
	"github.com/ssoward/evyroad/internal/stream"
	"github.com/ssoward/evyroad/internal/telemetry"
	"github.com/ssoward/evyroad/internal/trip"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "evyroad-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Str("storage", cfg.StorageBackend).
		Msg("starting EvyRoad API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTelEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	probes := map[string]handler.ReadinessProbe{}

	// Trip storage.
	var repo trip.Repository
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		dbConfig := cfg.DatabaseConfig()
		pool, err := database.ConnectWithRetry(ctx, dbConfig, 30*time.Second, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		repo = trip.NewPostgresRepository(pool)
		probes["postgres"] = pool.Ping
	case config.StorageMemory:
		repo = trip.NewMemoryRepository()
	default:
		log.Fatal().Str("backend", cfg.StorageBackend).Msg("unknown storage backend")
	}

	// Stats cache, enabled when Redis is configured.
	var statsCache trip.StatsCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		statsCache = trip.NewRedisStatsCache(redisClient, cfg.StatsCacheTTL, log)
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("stats cache enabled")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
	})
	if cfg.Env == "production" && cfg.JWTSigningKey == "local-dev-signing-key-change-in-production" {
		log.Fatal().Msg("JWT_SIGNING_KEY must be set in production")
	}

	hub := stream.NewHub(log)
	statsService := trip.NewStatsService(repo, statsCache)
	tripService := trip.NewService(repo, hub, statsService)
	catalog := route.NewCatalog()
	certService := certification.NewService(certification.NewMemoryRepository(), catalog, tripService, nil)
	streamHandler := stream.NewHandler(hub, tripService, log)
	log.Info().Int("routes", len(catalog.List())).Msg("services initialized")

	if cfg.SeedDemoData {
		if err := trip.SeedDemo(ctx, repo); err != nil {
			log.Error().Err(err).Msg("failed to seed demo data")
		} else {
			log.Info().Str("user", trip.DemoUserID).Msg("demo data seeded")
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		RequireTLS:     cfg.RequireTLS,
		EnableDevToken: cfg.Env != "production",
		Metrics:        metrics,
		Probes:         probes,
		JWTService:     jwtService,
		TripService:    tripService,
		StatsService:   statsService,
		RouteCatalog:   catalog,
		CertService:    certService,
		StreamHandler:  streamHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
