package model

import (
	"fmt"
	"time"
)

// Assignment places one employee on one date. ShiftID is nil when the day
// is intentionally left unfilled (empty-schedule placeholders). Assignments
// are immutable once created; a generation run only ever produces new
// records under a fresh version.
type Assignment struct {
	Date       time.Time        `json:"date"`
	EmployeeID int              `json:"employee_id"`
	ShiftID    *int             `json:"shift_id"`
	Status     AssignmentStatus `json:"status"`
	Version    int              `json:"version"`
}

// Validate checks that the assignment record is sound.
func (a Assignment) Validate() error {
	if a.EmployeeID <= 0 {
		return fmt.Errorf("assignment: employee id must be positive")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("assignment: date is required")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("assignment: invalid status %q", a.Status)
	}
	if a.Version <= 0 {
		return fmt.Errorf("assignment: version must be positive")
	}
	return nil
}

// HasShift reports whether the assignment carries an actual shift.
func (a Assignment) HasShift() bool { return a.ShiftID != nil }
