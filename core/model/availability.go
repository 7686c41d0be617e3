package model

import "fmt"

// Availability records whether and how strongly an employee can work one
// hour of one weekday. Hours without a record are treated as generally
// available.
type Availability struct {
	ID          int
	EmployeeID  int
	DayOfWeek   int // day index relative to the configured week start
	Hour        int // 0-23
	IsAvailable bool
	Type        AvailabilityType
}

// Validate checks that the availability record is sound.
func (a Availability) Validate() error {
	if a.EmployeeID <= 0 {
		return fmt.Errorf("availability %d: employee id must be positive", a.ID)
	}
	if a.DayOfWeek < 0 || a.DayOfWeek > 6 {
		return fmt.Errorf("availability %d: day %d out of range", a.ID, a.DayOfWeek)
	}
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("availability %d: hour %d out of range", a.ID, a.Hour)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("availability %d: invalid type %q", a.ID, a.Type)
	}
	if !a.IsAvailable && a.Type != AvailabilityUnavailable {
		return fmt.Errorf("availability %d: unavailable flag contradicts type %q", a.ID, a.Type)
	}
	return nil
}
