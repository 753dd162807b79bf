package model

import (
	"time"
)

// Category is the classification of a break as stored in the database.
type Category string

const (
	CategoryShortBreak Category = "DESCANSO"
	CategoryMeal       Category = "COMIDA"
	// CategoryPending is the placeholder an active break carries until it is closed.
	CategoryPending Category = "Pendiente"
)

// Shift is the contract category of an employee.
type Shift string

const (
	ShiftFull     Shift = "Full"
	ShiftPartTime Shift = "Part Time"
	ShiftOnCall   Shift = "Llamado"
)

// Valid reports whether s is one of the shifts accepted by the employees table.
func (s Shift) Valid() bool {
	switch s {
	case ShiftFull, ShiftPartTime, ShiftOnCall:
		return true
	}
	return false
}

type Employee struct {
	ID    int64  `json:"id" yaml:"-"`
	Name  string `json:"name" yaml:"name"`
	Badge string `json:"badge" yaml:"badge"`
	Code  string `json:"code" yaml:"code"`
	Shift Shift  `json:"shift" yaml:"shift"`
}

// ActiveBreak is an open break. Its presence is the ON_BREAK state.
type ActiveBreak struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	StartedAt  time.Time `json:"startedAt"`
	Category   Category  `json:"category"`
}

// BreakRecord is the immutable ledger entry written when a break closes.
// Date, StartTime and EndTime are local wall-clock values (2006-01-02, 15:04:05).
type BreakRecord struct {
	ID              int64    `json:"id"`
	EmployeeID      int64    `json:"employeeId"`
	ActiveBreakID   int64    `json:"activeBreakId"`
	Category        Category `json:"category"`
	Date            string   `json:"date"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	DurationMinutes int      `json:"durationMinutes"`
}

// BreakRecordView is a BreakRecord joined with its employee for reporting.
type BreakRecordView struct {
	BreakRecord
	EmployeeName  string `json:"employeeName"`
	EmployeeCode  string `json:"employeeCode"`
	EmployeeShift Shift  `json:"employeeShift"`
}

// RecordFilter selects break records by inclusive date range and optional employee.
type RecordFilter struct {
	From       string
	To         string
	EmployeeID int64
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)
