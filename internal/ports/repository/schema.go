package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema/postgres.sql
var postgresSchema string

//go:embed schema/sqlite.sql
var sqliteSchema string

// Migrate applies the dialect's schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return fmt.Errorf("apply %s schema: %w", d.Name, err)
	}
	return nil
}
