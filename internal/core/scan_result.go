package core

import (
	"breaktime.service/internal/core/model"
)

// ScanStatus is the outcome reported to the scanner.
type ScanStatus string

const (
	StatusBreakStarted ScanStatus = "entrada"
	StatusBreakEnded   ScanStatus = "salida"
	StatusError        ScanStatus = "error"
)

// Reasons attached to StatusError results.
const (
	ReasonNotFound          = "not_found"
	ReasonInvalidScan       = "invalid_scan"
	ReasonAlreadyOnBreak    = "already_on_break"
	ReasonNotOnBreak        = "not_on_break"
	ReasonStoreReadFailure  = "store_read_failure"
	ReasonStoreWriteFailure = "store_write_failure"
)

// Warnings attached to successful closes whose cleanup did not fully apply.
const (
	WarningActiveBreakNotDeleted = "active_break_not_deleted"
	WarningPostConditionAnomaly  = "post_condition_anomaly"
)

// ScanResult is what a scan (or a forced close) produces. It is always populated,
// even on failure, so the presentation layer never handles store errors itself.
type ScanResult struct {
	Status          ScanStatus     `json:"status"`
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	Reason          string         `json:"reason,omitempty"`
	Detail          string         `json:"detail,omitempty"`
	EmployeeName    string         `json:"employee_name,omitempty"`
	EmployeeCode    string         `json:"employee_code,omitempty"`
	Category        model.Category `json:"category,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	BreakRecordID   int64          `json:"break_record_id,omitempty"`
	RemainingActive int            `json:"remaining_active,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// IsStoreFailure reports whether the result stems from a data-store failure.
func (r ScanResult) IsStoreFailure() bool {
	return r.Reason == ReasonStoreReadFailure || r.Reason == ReasonStoreWriteFailure
}

func failure(reason, message string, err error) ScanResult {
	res := ScanResult{
		Status:  StatusError,
		Reason:  reason,
		Message: message,
	}
	if err != nil {
		res.Detail = err.Error()
	}
	return res
}
