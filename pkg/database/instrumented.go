package database

import (
	"context"
	"database/sql"
	"fmt"

	"breaktime.service/internal/config"
	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	_ "github.com/mattn/go-sqlite3"    // Register sqlite3 driver
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Store holds the two connection tiers. Reader runs with the application login,
// Writer with the elevated one. They are the same pool when no elevated login is
// configured and always for SQLite.
type Store struct {
	Driver string
	Reader *sql.DB
	Writer *sql.DB
}

// Close closes both pools.
func (s *Store) Close() error {
	err := s.Reader.Close()
	if s.Writer != s.Reader {
		if werr := s.Writer.Close(); err == nil {
			err = werr
		}
	}
	return err
}

// Open connects to the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: config.DriverSQLite, Reader: db, Writer: db}, nil

	case config.DriverPostgres:
		reader, err := NewInstrumentedConnection(ctx, "pgx", PostgresDSN(cfg, cfg.DBUser, cfg.DBPassword), semconv.DBSystemPostgreSQL)
		if err != nil {
			return nil, fmt.Errorf("reader connection: %w", err)
		}
		if !cfg.HasAdminCredentials() {
			return &Store{Driver: config.DriverPostgres, Reader: reader, Writer: reader}, nil
		}

		writer, err := NewInstrumentedConnection(ctx, "pgx", PostgresDSN(cfg, cfg.DBAdminUser, cfg.DBAdminPassword), semconv.DBSystemPostgreSQL)
		if err != nil {
			reader.Close()
			return nil, fmt.Errorf("writer connection: %w", err)
		}
		return &Store{Driver: config.DriverPostgres, Reader: reader, Writer: writer}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewInstrumentedConnection creates a database connection with OpenTelemetry instrumentation.
func NewInstrumentedConnection(ctx context.Context, driver, dsn string, system attribute.KeyValue) (*sql.DB, error) {
	// otelsql.Open wraps the driver to intercept queries and create spans
	db, err := otelsql.Open(driver, dsn,
		otelsql.WithAttributes(system),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
