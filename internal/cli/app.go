package cli

import (
	"context"
	"fmt"

	"breaktime.service/internal/config"
	"breaktime.service/internal/core"
	"breaktime.service/internal/ports/messaging"
	"breaktime.service/internal/ports/repository"
	"breaktime.service/pkg/aws"
	"breaktime.service/pkg/database"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// App holds the services a command works with.
type App struct {
	Breaks  *core.BreakService
	Admin   *core.AdminService
	migrate func(ctx context.Context) error
	close   func() error
}

// NewApp bundles already built services. migrate applies the schema; it may be nil.
func NewApp(breaks *core.BreakService, admin *core.AdminService, migrate func(ctx context.Context) error) *App {
	return &App{Breaks: breaks, Admin: admin, migrate: migrate}
}

// Migrate applies the schema of the configured store.
func (a *App) Migrate(ctx context.Context) error {
	if a.migrate == nil {
		return fmt.Errorf("migrations not available")
	}
	return a.migrate(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Open connects to the configured store and builds the services.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	dialect, err := repository.DialectFor(store.Driver)
	if err != nil {
		store.Close()
		return nil, err
	}
	repo := repository.NewSQLRepository(store.Reader, store.Writer, dialect)

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.EventsEnabled {
		awsCfg, err := aws.NewAWSConfig(ctx, cfg)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		publisher = messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.ExportSQSQueueURL, cfg.AlertSQSQueueURL)
	}

	app := NewApp(
		core.NewBreakService(repo, publisher, loc),
		core.NewAdminService(repo, loc),
		func(ctx context.Context) error { return repository.Migrate(ctx, store.Writer, dialect) },
	)
	app.close = store.Close
	return app, nil
}
