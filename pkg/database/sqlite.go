package database

import (
	"context"
	"database/sql"
	"fmt"

	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// NewSQLite opens (creating if needed) a single-file store for a standalone kiosk.
// Foreign keys are enforced and writes are serialised through one connection.
func NewSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := NewInstrumentedConnection(ctx, "sqlite3", dsn, semconv.DBSystemSqlite)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
