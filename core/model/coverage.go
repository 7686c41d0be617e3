package model

import "fmt"

// CoverageRequirement states how many employees must be present during a
// time range on one weekday. DayIndex is relative to the configured week
// start: 0 is the first day of the week.
type CoverageRequirement struct {
	ID                int
	DayIndex          int
	Start             string // "HH:MM"
	End               string // "HH:MM"
	MinEmployees      int
	MaxEmployees      int
	AllowedGroups     []EmployeeGroup // empty means any group
	RequiresKeyholder bool
}

// Validate checks that the requirement is sound.
func (c CoverageRequirement) Validate() error {
	if c.DayIndex < 0 || c.DayIndex > 6 {
		return fmt.Errorf("coverage %d: day index %d out of range", c.ID, c.DayIndex)
	}
	if c.MinEmployees < 0 {
		return fmt.Errorf("coverage %d: min employees must not be negative", c.ID)
	}
	if c.MaxEmployees > 0 && c.MaxEmployees < c.MinEmployees {
		return fmt.Errorf("coverage %d: max employees %d below min %d", c.ID, c.MaxEmployees, c.MinEmployees)
	}
	for _, g := range c.AllowedGroups {
		if !g.Valid() {
			return fmt.Errorf("coverage %d: invalid group %q", c.ID, g)
		}
	}
	return nil
}

// AllowsGroup reports whether employees of the given group satisfy this
// requirement. An empty group list allows everyone.
func (c CoverageRequirement) AllowsGroup(g EmployeeGroup) bool {
	if len(c.AllowedGroups) == 0 {
		return true
	}
	for _, a := range c.AllowedGroups {
		if a == g {
			return true
		}
	}
	return false
}
