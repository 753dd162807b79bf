package repository

import (
	"context"
	"database/sql"

	"breaktime.service/internal/core/model"
)

const employeeColumns = `id, name, badge, code, shift`

func scanEmployee(row *sql.Row) (*model.Employee, error) {
	e := &model.Employee{}
	err := row.Scan(&e.ID, &e.Name, &e.Badge, &e.Code, &e.Shift)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindEmployeeByBadge looks an employee up by exact card number.
func (r *SQLRepository) FindEmployeeByBadge(ctx context.Context, badge string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE badge = $1 ORDER BY id LIMIT 1`
	return scanEmployee(r.reader.QueryRowContext(ctx, r.q(query), badge))
}

// FindEmployeeByCode looks an employee up by code. Callers pass the normalised code.
func (r *SQLRepository) FindEmployeeByCode(ctx context.Context, code string) (*model.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE code = $1`
	return scanEmployee(r.reader.QueryRowContext(ctx, r.q(query), code))
}

// GetEmployee fetches an employee by ID.
func (r *SQLRepository) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	tagEmployee(ctx, id)
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return scanEmployee(r.reader.QueryRowContext(ctx, r.q(query), id))
}

// ListEmployees returns all employees ordered by name.
func (r *SQLRepository) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	rows, err := r.reader.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Badge, &e.Code, &e.Shift); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateEmployee inserts an employee; a taken code yields ErrDuplicateEmployeeCode.
func (r *SQLRepository) CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	query := `INSERT INTO employees (name, badge, code, shift) VALUES ($1, $2, $3, $4) RETURNING id`

	err := r.writer.QueryRowContext(ctx, r.q(query), e.Name, e.Badge, e.Code, e.Shift).Scan(&e.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmployeeCode
		}
		return nil, err
	}
	return &e, nil
}

// UpdateEmployee overwrites name, badge, code and shift. It reports whether the row existed.
func (r *SQLRepository) UpdateEmployee(ctx context.Context, e model.Employee) (bool, error) {
	query := `UPDATE employees
              SET name = $1,
                  badge = $2,
                  code = $3,
                  shift = $4
              WHERE id = $5`

	res, err := r.writer.ExecContext(ctx, r.q(query), e.Name, e.Badge, e.Code, e.Shift, e.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return false, ErrDuplicateEmployeeCode
		}
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteEmployee removes an employee and any open break. Employees with break
// records are refused with ErrEmployeeHasHistory.
func (r *SQLRepository) DeleteEmployee(ctx context.Context, id int64) (bool, error) {
	res, err := r.writer.ExecContext(ctx, r.q(`DELETE FROM employees WHERE id = $1`), id)
	if err != nil {
		if r.dialect.IsForeignKeyViolation(err) {
			return false, ErrEmployeeHasHistory
		}
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
