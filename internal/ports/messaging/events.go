package messaging

import (
	"time"

	"breaktime.service/internal/core/model"
)

// BreakClosedEvent is the JSON payload sent via SQS when a break is closed.
// Both the export queue and the alert queue carry it.
type BreakClosedEvent struct {
	BreakRecordID   int64          `json:"breakRecordId"`
	EmployeeID      int64          `json:"employeeId"`
	EmployeeName    string         `json:"employeeName"`
	EmployeeCode    string         `json:"employeeCode"`
	EmployeeShift   model.Shift    `json:"employeeShift"`
	Category        model.Category `json:"category"`
	Date            string         `json:"date"`
	StartTime       string         `json:"startTime"`
	EndTime         string         `json:"endTime"`
	DurationMinutes int            `json:"durationMinutes"`
	ExcessMinutes   int            `json:"excessMinutes"`
	ClosedAt        time.Time      `json:"closedAt"`
}
