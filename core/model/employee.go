package model

import "fmt"

// Employee represents a member of staff eligible for scheduling. Employees
// are read-only inside a generation run; assignments reference them by id.
type Employee struct {
	ID              int
	Name            string
	Group           EmployeeGroup
	ContractedHours float64 // nominal weekly hours, compliance baseline
	IsKeyholder     bool    // authorised to open/close the premises
	IsActive        bool
}

// Validate checks that the employee record is sound.
func (e Employee) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("employee id must be positive")
	}
	if !e.Group.Valid() {
		return fmt.Errorf("employee %d: invalid group %q", e.ID, e.Group)
	}
	if e.ContractedHours < 0 {
		return fmt.Errorf("employee %d: contracted hours must not be negative", e.ID)
	}
	_, max := e.Group.HourBand()
	if e.ContractedHours > max {
		return fmt.Errorf("employee %d: contracted hours %.1f exceed group maximum %.1f", e.ID, e.ContractedHours, max)
	}
	return nil
}

// WeeklyMax returns the maximum weekly hours for the employee's group.
func (e Employee) WeeklyMax() float64 {
	_, max := e.Group.HourBand()
	return max
}

// WeeklyMin returns the minimum weekly hours for the employee's group.
func (e Employee) WeeklyMin() float64 {
	min, _ := e.Group.HourBand()
	return min
}
