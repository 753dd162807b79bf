package core

import (
	"errors"

	"breaktime.service/internal/ports/repository"
)

var (
	// ErrEmployeeNotFound means a scan token matched neither a badge nor a code.
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrAlreadyOnBreak   = errors.New("employee already on break")
	ErrNotOnBreak       = errors.New("employee not on break")
	ErrInvalidEmployee  = errors.New("invalid employee")
	// ErrDuplicateEmployeeCode is re-exported so callers need not import the repository.
	ErrDuplicateEmployeeCode = repository.ErrDuplicateEmployeeCode
	ErrEmployeeHasHistory    = repository.ErrEmployeeHasHistory
	ErrActiveBreakNotFound   = errors.New("active break not found")
	ErrInvalidRange          = errors.New("invalid date range")
)
