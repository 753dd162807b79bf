package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"breaktime.service/internal/config"
	"breaktime.service/internal/core"
	"breaktime.service/internal/worker"
	"breaktime.service/internal/worker/alert"
	"breaktime.service/pkg/aws"
	"breaktime.service/pkg/logger"
	"breaktime.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/ses"
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
		shutdownTracer, err = telemetry.InitTracer("breaktime-alert-worker", telemetry.Options{
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
	sesClient := ses.NewFromConfig(awsCfg)
	alertService := core.NewSESAlertService(sesClient, cfg.AlertSender)
	processor := alert.NewProcessor(alertService, cfg.AlertRecipient)

	// Start Worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.AlertSQSQueueURL, processor)

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
