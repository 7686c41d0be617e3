package roster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rosterd/rosterd/core/model"
)

// ResourceProvider supplies the input records for one generation run. The
// engine only ever reads through this interface.
type ResourceProvider interface {
	Employees(ctx context.Context) ([]model.Employee, error)
	ShiftTemplates(ctx context.Context) ([]model.ShiftTemplate, error)
	CoverageRequirements(ctx context.Context) ([]model.CoverageRequirement, error)
	Absences(ctx context.Context, start, end time.Time) ([]model.Absence, error)
	Availabilities(ctx context.Context) ([]model.Availability, error)
	Settings(ctx context.Context) (model.Settings, error)
}

type availKey struct {
	employee int
	day      int
	hour     int
}

// Snapshot is the immutable view of all resources for one run. No
// component mutates it; assignments are built as separate output records.
type Snapshot struct {
	Start    time.Time
	End      time.Time
	Settings model.Settings

	Employees []model.Employee      // sorted by id, active and inactive
	Templates []model.ShiftTemplate // sorted by id, active only

	coverage     map[int][]model.CoverageRequirement
	absences     map[int][]model.Absence
	availability map[availKey]model.Availability
	employeeByID map[int]model.Employee
	templateByID map[int]model.ShiftTemplate
}

// LoadSnapshot reads all resources through the provider and validates them
// strictly. Missing settings or an empty employee or shift template table
// is a fatal ResourceLoadError.
func LoadSnapshot(ctx context.Context, p ResourceProvider, start, end time.Time) (*Snapshot, error) {
	settings, err := p.Settings(ctx)
	if err != nil {
		return nil, &ResourceLoadError{Resource: "settings", Err: err}
	}
	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, &ResourceLoadError{Resource: "settings", Err: err}
	}

	employees, err := p.Employees(ctx)
	if err != nil {
		return nil, &ResourceLoadError{Resource: "employees", Err: err}
	}
	if len(employees) == 0 {
		return nil, &ResourceLoadError{Resource: "employees", Err: fmt.Errorf("no employees defined")}
	}
	templates, err := p.ShiftTemplates(ctx)
	if err != nil {
		return nil, &ResourceLoadError{Resource: "shift templates", Err: err}
	}
	coverage, err := p.CoverageRequirements(ctx)
	if err != nil {
		return nil, &ResourceLoadError{Resource: "coverage requirements", Err: err}
	}
	absences, err := p.Absences(ctx, start, end)
	if err != nil {
		return nil, &ResourceLoadError{Resource: "absences", Err: err}
	}
	availabilities, err := p.Availabilities(ctx)
	if err != nil {
		return nil, &ResourceLoadError{Resource: "availabilities", Err: err}
	}

	snap := &Snapshot{
		Start:        start,
		End:          end,
		Settings:     settings,
		coverage:     make(map[int][]model.CoverageRequirement),
		absences:     make(map[int][]model.Absence),
		availability: make(map[availKey]model.Availability),
		employeeByID: make(map[int]model.Employee, len(employees)),
		templateByID: make(map[int]model.ShiftTemplate),
	}

	for _, e := range employees {
		if err := e.Validate(); err != nil {
			return nil, &ResourceLoadError{Resource: "employees", Err: err}
		}
		if _, dup := snap.employeeByID[e.ID]; dup {
			return nil, &ResourceLoadError{Resource: "employees", Err: fmt.Errorf("duplicate employee id %d", e.ID)}
		}
		snap.employeeByID[e.ID] = e
		snap.Employees = append(snap.Employees, e)
	}
	sort.Slice(snap.Employees, func(i, j int) bool { return snap.Employees[i].ID < snap.Employees[j].ID })

	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, &ResourceLoadError{Resource: "shift templates", Err: err}
		}
		if _, err := ParseClock(t.Start); err != nil {
			return nil, &ResourceLoadError{Resource: "shift templates", Err: fmt.Errorf("template %d: %w", t.ID, err)}
		}
		if _, err := ParseClock(t.End); err != nil {
			return nil, &ResourceLoadError{Resource: "shift templates", Err: fmt.Errorf("template %d: %w", t.ID, err)}
		}
		if !t.IsActive {
			continue
		}
		snap.templateByID[t.ID] = t
		snap.Templates = append(snap.Templates, t)
	}
	if len(snap.Templates) == 0 {
		return nil, &ResourceLoadError{Resource: "shift templates", Err: fmt.Errorf("no active shift templates defined")}
	}
	sort.Slice(snap.Templates, func(i, j int) bool { return snap.Templates[i].ID < snap.Templates[j].ID })

	for _, c := range coverage {
		if err := c.Validate(); err != nil {
			return nil, &ResourceLoadError{Resource: "coverage requirements", Err: err}
		}
		if _, err := ParseClock(c.Start); err != nil {
			return nil, &ResourceLoadError{Resource: "coverage requirements", Err: fmt.Errorf("coverage %d: %w", c.ID, err)}
		}
		if _, err := ParseClock(c.End); err != nil {
			return nil, &ResourceLoadError{Resource: "coverage requirements", Err: fmt.Errorf("coverage %d: %w", c.ID, err)}
		}
		snap.coverage[c.DayIndex] = append(snap.coverage[c.DayIndex], c)
	}
	for _, a := range absences {
		if err := a.Validate(); err != nil {
			return nil, &ResourceLoadError{Resource: "absences", Err: err}
		}
		snap.absences[a.EmployeeID] = append(snap.absences[a.EmployeeID], a)
	}
	for _, a := range availabilities {
		if err := a.Validate(); err != nil {
			return nil, &ResourceLoadError{Resource: "availabilities", Err: err}
		}
		snap.availability[availKey{a.EmployeeID, a.DayOfWeek, a.Hour}] = a
	}
	return snap, nil
}

// Employee looks up an employee by id.
func (s *Snapshot) Employee(id int) (model.Employee, bool) {
	e, ok := s.employeeByID[id]
	return e, ok
}

// Template looks up an active shift template by id.
func (s *Snapshot) Template(id int) (model.ShiftTemplate, bool) {
	t, ok := s.templateByID[id]
	return t, ok
}

// DayIndex maps a date to its day index under the configured week start.
func (s *Snapshot) DayIndex(date time.Time) int {
	return dayIndexFor(date, s.Settings.WeekStart)
}

// AbsentOn reports whether the employee has an absence covering the date.
func (s *Snapshot) AbsentOn(employeeID int, date time.Time) bool {
	for _, a := range s.absences[employeeID] {
		if a.Covers(date) {
			return true
		}
	}
	return false
}

// AvailabilityAt returns the availability type of an employee for one hour
// of a day index. Hours without a record are generally available.
func (s *Snapshot) AvailabilityAt(employeeID, dayIndex, hour int) model.AvailabilityType {
	if a, ok := s.availability[availKey{employeeID, dayIndex, hour}]; ok {
		return a.Type
	}
	return model.AvailabilityAvailable
}

// WeeklyMax returns the effective weekly hour cap for an employee: the
// group band bounded by the global maximum.
func (s *Snapshot) WeeklyMax(e model.Employee) float64 {
	max := e.WeeklyMax()
	if s.Settings.MaxWeeklyHours > 0 && s.Settings.MaxWeeklyHours < max {
		return s.Settings.MaxWeeklyHours
	}
	return max
}
