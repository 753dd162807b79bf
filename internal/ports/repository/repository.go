package repository

import (
	"context"
	"errors"
	"time"

	"breaktime.service/internal/core/model"
)

var (
	// ErrActiveBreakExists is returned when an employee already has an open break.
	ErrActiveBreakExists = errors.New("active break already exists for employee")
	// ErrBreakAlreadyClosed is returned when a record for the same active break was already written.
	ErrBreakAlreadyClosed = errors.New("break already closed")
	// ErrDuplicateEmployeeCode is returned when the employee code is taken.
	ErrDuplicateEmployeeCode = errors.New("employee code already exists")
	// ErrEmployeeHasHistory is returned when deleting an employee that has break records.
	ErrEmployeeHasHistory = errors.New("employee has break records")
)

// EmployeeStore contract. Lookups return nil, nil when nothing matches.
type EmployeeStore interface {
	FindEmployeeByBadge(ctx context.Context, badge string) (*model.Employee, error)
	FindEmployeeByCode(ctx context.Context, code string) (*model.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*model.Employee, error)
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error)
	UpdateEmployee(ctx context.Context, e model.Employee) (bool, error)
	DeleteEmployee(ctx context.Context, id int64) (bool, error)
}

// BreakStore contract for active breaks and the break ledger.
type BreakStore interface {
	FindActiveBreak(ctx context.Context, employeeID int64) (*model.ActiveBreak, error)
	GetActiveBreak(ctx context.Context, id int64) (*model.ActiveBreak, error)
	CreateActiveBreak(ctx context.Context, employeeID int64, start time.Time) (*model.ActiveBreak, error)
	DeleteActiveBreak(ctx context.Context, id int64) (bool, error)
	CountActiveBreaks(ctx context.Context, employeeID int64) (int, error)
	ListActiveBreaks(ctx context.Context) ([]model.ActiveBreak, error)
	CreateBreakRecord(ctx context.Context, rec model.BreakRecord) (*model.BreakRecord, error)
	ListBreakRecords(ctx context.Context, filter model.RecordFilter) ([]model.BreakRecordView, error)
}

// Repository is the full Clock Store used by the services.
type Repository interface {
	EmployeeStore
	BreakStore
	Ping(ctx context.Context) error
}
