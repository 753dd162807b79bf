// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"breaktime.service/internal/api"
	"breaktime.service/internal/config"
	"breaktime.service/internal/core"
	"breaktime.service/internal/ports/messaging"
	"breaktime.service/internal/ports/repository"
	"breaktime.service/pkg/aws"
	"breaktime.service/pkg/database"
	"breaktime.service/pkg/logger"
	"breaktime.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer := telemetry.Noop()
	if cfg.TracingEnabled {
		shutdownTracer, err = telemetry.InitTracer("breaktime-api", telemetry.Options{
			Endpoint: cfg.OTelEndpoint,
			Stdout:   cfg.IsLocalDev,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to init tracer")
		}
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timezone")
	}

	// DB connection
	store, err := database.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer store.Close()
	log.Info().Str("driver", store.Driver).Msg("Successfully connected to the database.")

	dialect, err := repository.DialectFor(store.Driver)
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported store driver")
	}
	if dialect.Name == repository.SQLite.Name {
		// A standalone kiosk owns its database file, so the schema is applied on start.
		if err := repository.Migrate(context.Background(), store.Writer, dialect); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
	}
	repo := repository.NewSQLRepository(store.Reader, store.Writer, dialect)

	// Break events
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.EventsEnabled {
		awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to load SDK config")
		}
		publisher = messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.ExportSQSQueueURL, cfg.AlertSQSQueueURL)
	}

	// Initialize dependencies
	breaks := core.NewBreakService(repo, publisher, loc)
	admin := core.NewAdminService(repo, loc)

	if cfg.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN is empty, admin routes will reject every request")
	}

	// Setup router and server
	router := api.NewRouter(api.Dependencies{
		Breaks:     breaks,
		Admin:      admin,
		Store:      repo,
		Location:   loc,
		AdminToken: cfg.AdminToken,
	})

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(router, "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("timezone", loc.String()).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
