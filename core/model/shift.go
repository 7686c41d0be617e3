package model

import "fmt"

// ShiftTemplate defines a recurring shift by wall-clock times. End may be
// at or before Start, in which case the shift crosses midnight.
type ShiftTemplate struct {
	ID            int
	Name          string
	Start         string // "HH:MM"
	End           string // "HH:MM"
	DurationHours float64
	Type          ShiftType
	RequiresBreak bool
	ActiveDays    [7]bool // indexed by day index relative to the configured week start
	MinEmployees  int     // intrinsic staffing bounds, used when no coverage matches
	MaxEmployees  int
	IsActive      bool
}

// Validate checks that the template is sound. Times are validated by the
// snapshot loader which owns the clock parsing.
func (t ShiftTemplate) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("shift template id must be positive")
	}
	if t.DurationHours <= 0 || t.DurationHours > 24 {
		return fmt.Errorf("shift template %d: duration %.2f out of range", t.ID, t.DurationHours)
	}
	if t.Type != "" && !t.Type.Valid() {
		return fmt.Errorf("shift template %d: invalid shift type %q", t.ID, t.Type)
	}
	if t.MinEmployees < 0 || (t.MaxEmployees > 0 && t.MaxEmployees < t.MinEmployees) {
		return fmt.Errorf("shift template %d: invalid staffing bounds %d/%d", t.ID, t.MinEmployees, t.MaxEmployees)
	}
	return nil
}

// ActiveOn reports whether the template runs on the given day index.
func (t ShiftTemplate) ActiveOn(dayIndex int) bool {
	if dayIndex < 0 || dayIndex > 6 {
		return false
	}
	return t.ActiveDays[dayIndex]
}
