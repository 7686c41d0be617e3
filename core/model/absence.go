package model

import (
	"fmt"
	"time"
)

// Absence blocks all assignment of an employee within a date span, both
// ends inclusive.
type Absence struct {
	ID         int
	EmployeeID int
	Start      time.Time // date, midnight UTC
	End        time.Time
	Type       AbsenceType
}

// Validate checks that the absence record is sound.
func (a Absence) Validate() error {
	if a.EmployeeID <= 0 {
		return fmt.Errorf("absence %d: employee id must be positive", a.ID)
	}
	if a.End.Before(a.Start) {
		return fmt.Errorf("absence %d: end before start", a.ID)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("absence %d: invalid type %q", a.ID, a.Type)
	}
	return nil
}

// Covers reports whether the absence spans the given date.
func (a Absence) Covers(date time.Time) bool {
	return !date.Before(a.Start) && !date.After(a.End)
}
