package roster

import (
	"context"
	"testing"

	"github.com/rosterd/rosterd/core/model"
)

func filled(d string, employeeID, shiftID, version int) model.Assignment {
	day, err := parseTestDate(d)
	if err != nil {
		panic(err)
	}
	id := shiftID
	return model.Assignment{
		Date:       day,
		EmployeeID: employeeID,
		ShiftID:    &id,
		Status:     model.StatusDraft,
		Version:    version,
	}
}

func TestContractedHoursShortfall(t *testing.T) {
	// A part-time employee with 30 contracted hours and a single 8h shift
	// sits below the 75% threshold: exactly one warning.
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "p", Group: model.GroupPartTime, ContractedHours: 30, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{ContractedHours: true})
	findings := v.Validate(snap, []model.Assignment{filled("2026-03-02", 1, 1, 1)})
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want exactly 1: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.Kind != "insufficient contracted hours" {
		t.Errorf("kind %q", f.Kind)
	}
	if f.Severity != SeverityWarning {
		t.Errorf("severity %q, want warning", f.Severity)
	}
	if f.EmployeeID != 1 {
		t.Errorf("employee %d, want 1", f.EmployeeID)
	}
}

func TestContractedHoursMetNoFinding(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "p", Group: model.GroupPartTime, ContractedHours: 10, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{ContractedHours: true})
	findings := v.Validate(snap, []model.Assignment{filled("2026-03-02", 1, 1, 1)})
	if len(findings) != 0 {
		t.Errorf("8h of 10h contracted is above threshold, got %+v", findings)
	}
}

func TestRestPeriodViolation(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{
			dayTemplate(1, "13:00", "22:00", 9),
			dayTemplate(2, "06:00", "14:00", 8),
		},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{RestPeriods: true})
	findings := v.Validate(snap, []model.Assignment{
		filled("2026-03-02", 1, 1, 1),
		filled("2026-03-03", 1, 2, 1),
	})
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(findings), findings)
	}
	if findings[0].Kind != "rest period violation" || findings[0].Severity != SeverityError {
		t.Errorf("unexpected finding: %+v", findings[0])
	}
}

func TestKeyholderMissingOnFilledShift(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "06:00", "14:00", 8)},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{KeyholderCoverage: true})
	findings := v.Validate(snap, []model.Assignment{filled("2026-03-02", 1, 1, 1)})
	if len(findings) != 1 || findings[0].Kind != "keyholder missing" {
		t.Errorf("got %+v, want one keyholder finding", findings)
	}
}

func TestDuplicateAssignments(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{
			dayTemplate(1, "08:00", "12:00", 4),
			dayTemplate(2, "13:00", "17:00", 4),
		},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{DuplicateAssignments: true})
	findings := v.Validate(snap, []model.Assignment{
		filled("2026-03-02", 1, 1, 1),
		filled("2026-03-02", 1, 2, 1),
	})
	if len(findings) != 1 || findings[0].Kind != "duplicate assignment" {
		t.Errorf("got %+v, want one duplicate finding", findings)
	}
}

func TestDuplicatePlaceholderAndFilled(t *testing.T) {
	// A placeholder row and a filled row on the same date are a duplicate
	// even though the placeholder carries no shift.
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{DuplicateAssignments: true})
	findings := v.Validate(snap, []model.Assignment{
		filled("2026-03-02", 1, 1, 1),
		{Date: date(2026, 3, 2), EmployeeID: 1, Status: model.StatusDraft, Version: 1},
	})
	if len(findings) != 1 || findings[0].Kind != "duplicate assignment" {
		t.Errorf("got %+v, want one duplicate finding", findings)
	}
}

func TestAbsenceConflict(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
		absences: []model.Absence{
			{ID: 1, EmployeeID: 1, Start: date(2026, 3, 2), End: date(2026, 3, 2), Type: model.AbsenceSick},
		},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{AbsenceConflicts: true})
	findings := v.Validate(snap, []model.Assignment{filled("2026-03-02", 1, 1, 1)})
	if len(findings) != 1 || findings[0].Kind != "assigned during absence" {
		t.Errorf("got %+v, want one absence finding", findings)
	}
}

func TestInactiveEmployeeAssigned(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
			{ID: 2, Name: "gone", Group: model.GroupFullTime, ContractedHours: 38},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "08:00", "16:00", 8)},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{InactiveEmployees: true})
	findings := v.Validate(snap, []model.Assignment{filled("2026-03-02", 2, 1, 1)})
	if len(findings) != 1 || findings[0].Kind != "inactive employee assigned" {
		t.Errorf("got %+v, want one inactive finding", findings)
	}
}

func TestDisabledRulesStaySilent(t *testing.T) {
	p := &fakeProvider{
		employees: []model.Employee{
			{ID: 1, Name: "a", Group: model.GroupFullTime, ContractedHours: 38, IsActive: true},
		},
		templates: []model.ShiftTemplate{dayTemplate(1, "06:00", "14:00", 8)},
	}
	snap, err := LoadSnapshot(context.Background(), p, date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	v := NewValidator(RulesConfig{})
	findings := v.Validate(snap, []model.Assignment{filled("2026-03-02", 1, 1, 1)})
	if len(findings) != 0 {
		t.Errorf("all rules disabled but got %+v", findings)
	}
}
