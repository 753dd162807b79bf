package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"breaktime.service/internal/config"
	"breaktime.service/internal/worker"
	"breaktime.service/internal/worker/sheets"
	"breaktime.service/pkg/aws"
	"breaktime.service/pkg/logger"
	"breaktime.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	logger.Setup(cfg.IsLocalDev)

	shutdownTracer := telemetry.Noop()
	if cfg.TracingEnabled {
		shutdownTracer, err = telemetry.InitTracer("breaktime-export-worker", telemetry.Options{
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

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize Dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	sheetsClient := sheets.NewHTTPClient(cfg.SheetsWebhookURL)
	processor := sheets.NewProcessor(sheetsClient)

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.ExportSQSQueueURL, processor)

	done := make(chan struct{})
	go func() {
		app.Start(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()
	<-done

	log.Info().Msg("Worker exited gracefully")
}
