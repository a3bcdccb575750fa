// Package main provides the entrypoint for the status page API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rialtas/statuspage/internal/api"
	"github.com/rialtas/statuspage/internal/api/middleware"
	"github.com/rialtas/statuspage/internal/apikey"
	"github.com/rialtas/statuspage/internal/database"
	"github.com/rialtas/statuspage/internal/operator"
	"github.com/rialtas/statuspage/internal/status"
	"github.com/rialtas/statuspage/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "statuspage-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting status page API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
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

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database, retrying while it comes up
	dbConfig := database.ConfigFromEnv()
	pool, err := database.ConnectWithRetry(ctx, dbConfig, 60*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize status repositories and tracker
	serviceRepo := status.NewPostgresServiceRepository(pool)
	updateRepo := status.NewPostgresUpdateRepository(pool)
	tracker := status.NewTracker(serviceRepo, updateRepo)
	log.Info().Msg("status tracker initialized")

	// Initialize API key service
	keyRepo := apikey.NewPostgresRepository(pool)
	keyService := apikey.NewService(apikey.ServiceConfig{
		Repository: keyRepo,
		Logger:     log,
	})
	log.Info().Msg("api key service initialized")

	// Initialize operator token service (get signing key from environment)
	operatorSigningKey := os.Getenv("OPERATOR_SIGNING_KEY")
	if operatorSigningKey == "" {
		operatorSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default operator signing key - not secure for production")
	}

	operatorTokens := operator.NewTokenService(operator.Config{
		SigningKey: operatorSigningKey,
		Issuer:     "statuspage-admin",
		Audience:   "statuspage-api",
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		Metrics:        metrics,
		Tracker:        tracker,
		Keys:           keyService,
		OperatorTokens: operatorTokens,
		Pinger:         pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
