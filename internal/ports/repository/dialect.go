package repository

import (
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures the few places where Postgres and SQLite differ.
// Queries are written once with $N placeholders.
type Dialect struct {
	Name string
	// Rebind rewrites $N placeholders for the target driver.
	Rebind func(query string) string
	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
	// IsForeignKeyViolation reports whether err is a foreign key constraint failure.
	IsForeignKeyViolation func(err error) bool
	// DateExpr and TimeExpr render DATE/TIME columns as text in SELECT lists.
	DateExpr func(col string) string
	TimeExpr func(col string) string
	schema   string
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var Postgres = Dialect{
	Name:   "postgres",
	Rebind: func(q string) string { return q },
	IsUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
	},
	IsForeignKeyViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
	},
	DateExpr: func(col string) string { return "to_char(" + col + ", 'YYYY-MM-DD')" },
	TimeExpr: func(col string) string { return col + "::text" },
	schema:   postgresSchema,
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

var SQLite = Dialect{
	Name: "sqlite",
	// SQLite reads "$1" as a named parameter; ?N keeps positional binding.
	Rebind: func(q string) string { return placeholder.ReplaceAllString(q, "?$1") },
	IsUniqueViolation: func(err error) bool {
		var sqlErr sqlite3.Error
		if !errors.As(err, &sqlErr) {
			return false
		}
		return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqlErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	},
	IsForeignKeyViolation: func(err error) bool {
		var sqlErr sqlite3.Error
		return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	},
	DateExpr: func(col string) string { return col },
	TimeExpr: func(col string) string { return col },
	schema:   sqliteSchema,
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case Postgres.Name, "pgx":
		return Postgres, nil
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, errors.New("unknown store driver: " + name)
}
