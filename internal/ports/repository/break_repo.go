package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"breaktime.service/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SQLRepository is the Clock Store over database/sql.
//
// Reads go through reader, which may run with row-level policies applied; every
// mutation goes through writer, which holds the elevated credentials. Both may be the
// same pool (SQLite).
type SQLRepository struct {
	reader  *sql.DB
	writer  *sql.DB
	dialect Dialect
}

// NewSQLRepository creates the repository. A nil writer falls back to reader.
func NewSQLRepository(reader, writer *sql.DB, d Dialect) *SQLRepository {
	if writer == nil {
		writer = reader
	}
	return &SQLRepository{reader: reader, writer: writer, dialect: d}
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.Rebind(query)
}

func tagEmployee(ctx context.Context, employeeID int64) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))
}

// Ping checks both tiers.
func (r *SQLRepository) Ping(ctx context.Context) error {
	if err := r.reader.PingContext(ctx); err != nil {
		return fmt.Errorf("reader: %w", err)
	}
	if err := r.writer.PingContext(ctx); err != nil {
		return fmt.Errorf("writer: %w", err)
	}
	return nil
}

// FindActiveBreak returns the open break of an employee, or nil.
func (r *SQLRepository) FindActiveBreak(ctx context.Context, employeeID int64) (*model.ActiveBreak, error) {
	tagEmployee(ctx, employeeID)

	query := `SELECT id, employee_id, started_at, category
              FROM active_breaks
              WHERE employee_id = $1
              ORDER BY started_at ASC
              LIMIT 1`

	return scanActiveBreak(r.reader.QueryRowContext(ctx, r.q(query), employeeID))
}

// GetActiveBreak fetches an active break by its ID.
func (r *SQLRepository) GetActiveBreak(ctx context.Context, id int64) (*model.ActiveBreak, error) {
	query := `SELECT id, employee_id, started_at, category FROM active_breaks WHERE id = $1`
	return scanActiveBreak(r.reader.QueryRowContext(ctx, r.q(query), id))
}

func scanActiveBreak(row *sql.Row) (*model.ActiveBreak, error) {
	ab := &model.ActiveBreak{}
	err := row.Scan(&ab.ID, &ab.EmployeeID, &ab.StartedAt, &ab.Category)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ab.StartedAt = ab.StartedAt.UTC()
	return ab, nil
}

// CreateActiveBreak opens a break. It fails with ErrActiveBreakExists instead of
// inserting a second row for the same employee.
func (r *SQLRepository) CreateActiveBreak(ctx context.Context, employeeID int64, start time.Time) (*model.ActiveBreak, error) {
	tagEmployee(ctx, employeeID)

	ab := &model.ActiveBreak{
		EmployeeID: employeeID,
		StartedAt:  start.UTC(),
		Category:   model.CategoryPending,
	}

	query := `INSERT INTO active_breaks (employee_id, started_at, category)
              VALUES ($1, $2, $3) RETURNING id`

	err := r.writer.QueryRowContext(ctx, r.q(query), ab.EmployeeID, ab.StartedAt, ab.Category).Scan(&ab.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, ErrActiveBreakExists
		}
		return nil, err
	}

	return ab, nil
}

// DeleteActiveBreak removes an active break and reports whether a row went away.
func (r *SQLRepository) DeleteActiveBreak(ctx context.Context, id int64) (bool, error) {
	res, err := r.writer.ExecContext(ctx, r.q(`DELETE FROM active_breaks WHERE id = $1`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActiveBreaks counts the open breaks of one employee. Used as a post-condition
// check after a close, so it reads through the writer to see its own writes.
func (r *SQLRepository) CountActiveBreaks(ctx context.Context, employeeID int64) (int, error) {
	var n int
	err := r.writer.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM active_breaks WHERE employee_id = $1`), employeeID).Scan(&n)
	return n, err
}

// ListActiveBreaks returns every open break, oldest first.
func (r *SQLRepository) ListActiveBreaks(ctx context.Context) ([]model.ActiveBreak, error) {
	rows, err := r.reader.QueryContext(ctx, `SELECT id, employee_id, started_at, category FROM active_breaks ORDER BY started_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ActiveBreak
	for rows.Next() {
		var ab model.ActiveBreak
		if err := rows.Scan(&ab.ID, &ab.EmployeeID, &ab.StartedAt, &ab.Category); err != nil {
			return nil, err
		}
		ab.StartedAt = ab.StartedAt.UTC()
		out = append(out, ab)
	}
	return out, rows.Err()
}

// CreateBreakRecord appends to the ledger. A second record for the same active
// break yields ErrBreakAlreadyClosed.
func (r *SQLRepository) CreateBreakRecord(ctx context.Context, rec model.BreakRecord) (*model.BreakRecord, error) {
	tagEmployee(ctx, rec.EmployeeID)

	query := `INSERT INTO break_records
                (employee_id, active_break_id, category, break_date, start_time, end_time, duration_minutes)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := r.writer.QueryRowContext(ctx, r.q(query),
		rec.EmployeeID, rec.ActiveBreakID, rec.Category, rec.Date, rec.StartTime, rec.EndTime, rec.DurationMinutes,
	).Scan(&rec.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, ErrBreakAlreadyClosed
		}
		return nil, err
	}
	return &rec, nil
}

// ListBreakRecords returns records joined with their employee, newest first
// (date desc, start desc).
func (r *SQLRepository) ListBreakRecords(ctx context.Context, filter model.RecordFilter) ([]model.BreakRecordView, error) {
	d := r.dialect

	var sb strings.Builder
	sb.WriteString(`SELECT r.id, r.employee_id, r.active_break_id, r.category, `)
	sb.WriteString(d.DateExpr("r.break_date") + `, `)
	sb.WriteString(d.TimeExpr("r.start_time") + `, `)
	sb.WriteString(d.TimeExpr("r.end_time") + `, `)
	sb.WriteString(`r.duration_minutes, e.name, e.code, e.shift
              FROM break_records r
              JOIN employees e ON e.id = r.employee_id
              WHERE r.break_date >= $1 AND r.break_date <= $2`)

	args := []any{filter.From, filter.To}
	if filter.EmployeeID != 0 {
		sb.WriteString(` AND r.employee_id = $3`)
		args = append(args, filter.EmployeeID)
	}
	sb.WriteString(` ORDER BY r.break_date DESC, r.start_time DESC, r.id DESC`)

	rows, err := r.reader.QueryContext(ctx, r.q(sb.String()), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BreakRecordView
	for rows.Next() {
		var v model.BreakRecordView
		if err := rows.Scan(
			&v.ID, &v.EmployeeID, &v.ActiveBreakID, &v.Category, &v.Date, &v.StartTime, &v.EndTime,
			&v.DurationMinutes, &v.EmployeeName, &v.EmployeeCode, &v.EmployeeShift,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

var errNoFilter = errors.New("record filter needs both From and To")

// ValidateFilter checks that a filter has a usable date range.
func ValidateFilter(f model.RecordFilter) error {
	if f.From == "" || f.To == "" {
		return errNoFilter
	}
	if _, err := time.Parse(model.DateLayout, f.From); err != nil {
		return fmt.Errorf("invalid from date %q: %w", f.From, err)
	}
	if _, err := time.Parse(model.DateLayout, f.To); err != nil {
		return fmt.Errorf("invalid to date %q: %w", f.To, err)
	}
	if f.From > f.To {
		return fmt.Errorf("from date %s is after to date %s", f.From, f.To)
	}
	return nil
}
