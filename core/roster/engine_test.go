package roster

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rosterd/rosterd/core/model"
)

var allDays = [7]bool{true, true, true, true, true, true, true}

// fakeProvider serves fixture records for generation tests.
type fakeProvider struct {
	employees []model.Employee
	templates []model.ShiftTemplate
	coverage  []model.CoverageRequirement
	absences  []model.Absence
	avail     []model.Availability
	settings  model.Settings
	err       error
}

func (f *fakeProvider) Employees(context.Context) ([]model.Employee, error) {
	return f.employees, f.err
}

func (f *fakeProvider) ShiftTemplates(context.Context) ([]model.ShiftTemplate, error) {
	return f.templates, f.err
}

func (f *fakeProvider) CoverageRequirements(context.Context) ([]model.CoverageRequirement, error) {
	return f.coverage, f.err
}

func (f *fakeProvider) Absences(context.Context, time.Time, time.Time) ([]model.Absence, error) {
	return f.absences, f.err
}

func (f *fakeProvider) Availabilities(context.Context) ([]model.Availability, error) {
	return f.avail, f.err
}

func (f *fakeProvider) Settings(context.Context) (model.Settings, error) {
	return f.settings, f.err
}

type testLogger struct{}

func (testLogger) Debugf(string, ...any)         {}
func (testLogger) Debugw(string, map[string]any) {}
func (testLogger) Infof(string, ...any)          {}
func (testLogger) Warnf(string, ...any)          {}
func (testLogger) Errorf(string, ...any)         {}

func newTestGenerator(t *testing.T, cfg Config) *Generator {
	t.Helper()
	g, err := NewGenerator(cfg, testLogger{}, nil, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func dayTemplate(id int, start, end string, hours float64) model.ShiftTemplate {
	return model.ShiftTemplate{
		ID: id, Name: "shift", Start: start, End: end, DurationHours: hours,
		ActiveDays: allDays, MinEmployees: 1, MaxEmployees: 1, IsActive: true,
	}
}

func TestGenerateKeyholderFirst(t *testing.T) {
	// Early shift derives requires_keyholder; the keyholder outranks the
	// lower employee id while the slot still needs one.
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "ann", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
			{ID: 2, Name: "bob", Group: model.GroupFullTime, ContractedHours: 38, IsKeyholder: true, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "06:00", "14:00", 8)},
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{Start: date(2026, 3, 2), End: date(2026, 3, 2)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(res.Assignments))
	}
	if res.Assignments[0].EmployeeID != 2 {
		t.Errorf("assigned employee %d, want keyholder 2", res.Assignments[0].EmployeeID)
	}
	for _, w := range res.Warnings {
		if w.Kind == WarningKeyholderMissing {
			t.Errorf("unexpected keyholder warning: %s", w.Message)
		}
	}
}

func TestGenerateCoverageWithKeyholderTarget(t *testing.T) {
	// A coverage interval asking for two employees and a keyholder is
	// satisfied by the one keyholder plus one other, without warnings.
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "ann", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
			{ID: 2, Name: "bob", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
			{ID: 3, Name: "kim", Group: model.GroupFullTime, ContractedHours: 38, IsKeyholder: true, IsActive: true},
		},
		templates: []model.ShiftTemplate{{
			ID: 1, Name: "day", Start: "08:00", End: "16:00", DurationHours: 8,
			ActiveDays: allDays, IsActive: true,
		}},
		coverage: []model.CoverageRequirement{{
			ID: 1, DayIndex: 0, Start: "08:00", End: "16:00",
			MinEmployees: 2, MaxEmployees: 2, RequiresKeyholder: true,
		}},
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{Start: date(2026, 3, 2), End: date(2026, 3, 2)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Assignments) != 2 {
		t.Fatalf("got %d assignments, want 2", len(res.Assignments))
	}
	hasKeyholder := false
	for _, a := range res.Assignments {
		if a.EmployeeID == 3 {
			hasKeyholder = true
		}
	}
	if !hasKeyholder {
		t.Errorf("keyholder not in assignment set: %+v", res.Assignments)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", res.Warnings)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 3, Name: "c", Group: model.GroupPartTime, ContractedHours: 20, IsActive: true},
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsKeyholder: true, IsActive: true},
			{ID: 2, Name: "b", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{
			dayTemplate(1, "06:00", "14:00", 8),
			dayTemplate(2, "12:00", "20:00", 8),
		},
	}
	g := newTestGenerator(t, DefaultConfig())
	req := Request{Start: date(2026, 3, 2), End: date(2026, 3, 8)}
	first, err := g.Generate(context.Background(), p, req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := g.Generate(context.Background(), p, req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Errorf("runs differ:\n%+v\n%+v", first.Assignments, second.Assignments)
	}
}

func TestGenerateWeeklyCap(t *testing.T) {
	// A marginal employee (12h band) takes one 8h shift; the next one
	// would exceed the band, so the slot goes unfilled with a warning.
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "m", Group: model.GroupMarginal, ContractedHours: 10, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{Start: date(2026, 3, 2), End: date(2026, 3, 3)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := res.Filled(); got != 1 {
		t.Errorf("filled %d shifts, want 1 within the 12h band", got)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Kind == WarningCoverageShortfall {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a coverage shortfall warning, got %+v", res.Warnings)
	}
}

func TestGenerateSkipsAbsentEmployee(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
			{ID: 2, Name: "b", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
		absences: []model.Absence{{
			ID: 1, EmployeeID: 1, Start: date(2026, 3, 2), End: date(2026, 3, 4), Type: model.AbsenceVacation,
		}},
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{Start: date(2026, 3, 2), End: date(2026, 3, 2)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Assignments) != 1 || res.Assignments[0].EmployeeID != 2 {
		t.Errorf("expected employee 2 to cover, got %+v", res.Assignments)
	}
}

func TestGenerateUnavailableHourBlocks(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
		avail: []model.Availability{
			{ID: 1, EmployeeID: 1, DayOfWeek: 0, Hour: 12, IsAvailable: false, Type: model.AvailabilityUnavailable},
		},
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{Start: date(2026, 3, 2), End: date(2026, 3, 2)})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := res.Filled(); got != 0 {
		t.Errorf("filled %d, want 0: one blocked hour blocks the shift", got)
	}
}

func TestGenerateCreateEmptySchedules(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsKeyholder: true, IsActive: true},
			{ID: 2, Name: "b", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{
		Start: date(2026, 3, 2), End: date(2026, 3, 2), CreateEmptySchedules: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Assignments) != 2 {
		t.Fatalf("got %d assignments, want filled + placeholder", len(res.Assignments))
	}
	placeholders := 0
	for _, a := range res.Assignments {
		if !a.HasShift() {
			placeholders++
		}
	}
	if placeholders != 1 {
		t.Errorf("got %d placeholders, want 1", placeholders)
	}
}

func TestGenerateEmptySchedulesAfterSwap(t *testing.T) {
	// A fixed-availability keyholder monopolizes three early shifts and the
	// balancer hands one to the other employee. Placeholders must follow
	// the swapped schedule: exactly one row per employee and date.
	var avail []model.Availability
	for day := 0; day < 3; day++ {
		for hour := 6; hour < 14; hour++ {
			avail = append(avail, model.Availability{
				ID: len(avail) + 1, EmployeeID: 1, DayOfWeek: day, Hour: hour,
				IsAvailable: true, Type: model.AvailabilityFixed,
			})
		}
	}
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsKeyholder: true, IsActive: true},
			{ID: 2, Name: "b", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{
			{
				ID: 1, Name: "open", Start: "06:00", End: "14:00", DurationHours: 8,
				ActiveDays: [7]bool{true, true, true, false, false, false, false},
				MinEmployees: 1, MaxEmployees: 1, IsActive: true,
			},
			{
				ID: 2, Name: "mid", Start: "11:00", End: "17:00", DurationHours: 6,
				ActiveDays: [7]bool{false, false, false, true, false, false, false},
				MinEmployees: 1, MaxEmployees: 1, IsActive: true,
			},
		},
		avail: avail,
	}
	g := newTestGenerator(t, DefaultConfig())
	res, err := g.Generate(context.Background(), p, Request{
		Start: date(2026, 3, 2), End: date(2026, 3, 5), CreateEmptySchedules: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.SwapsAccepted != 1 {
		t.Fatalf("accepted %d swaps, want 1", res.SwapsAccepted)
	}
	if len(res.Assignments) != 8 {
		t.Fatalf("got %d assignment rows, want one per employee and date", len(res.Assignments))
	}
	rows := make(map[dayKey]int)
	for _, a := range res.Assignments {
		rows[dayKey{a.EmployeeID, a.Date.Unix()}]++
	}
	for key, n := range rows {
		if n != 1 {
			t.Errorf("employee %d has %d rows on %s", key.employee, n, time.Unix(key.day, 0).UTC().Format("2006-01-02"))
		}
	}
	placeholders := 0
	for _, a := range res.Assignments {
		if !a.HasShift() {
			placeholders++
		}
	}
	if placeholders != 4 {
		t.Errorf("got %d placeholders, want 4", placeholders)
	}
}

func TestGenerateCancellationDiscardsSchedule(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	g := newTestGenerator(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := g.Generate(ctx, p, Request{Start: date(2026, 3, 2), End: date(2026, 3, 8)})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if res != nil {
		t.Errorf("partial schedule returned on cancellation: %+v", res)
	}
}

func TestGenerateInvalidRange(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig())
	_, err := g.Generate(context.Background(), &fakeProvider{}, Request{
		Start: date(2026, 3, 8), End: date(2026, 3, 2),
	})
	var cfgErr *ConfigurationError
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !errors.As(err, &cfgErr) {
		t.Errorf("error type %T, want *ConfigurationError", err)
	}
}

func TestGenerateNoEmployeesFails(t *testing.T) {
	g := newTestGenerator(t, DefaultConfig())
	_, err := g.Generate(context.Background(), &fakeProvider{
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}, Request{Start: date(2026, 3, 2), End: date(2026, 3, 2)})
	var loadErr *ResourceLoadError
	if err == nil {
		t.Fatal("expected resource load error")
	}
	if !errors.As(err, &loadErr) {
		t.Errorf("error type %T, want *ResourceLoadError", err)
	}
}
