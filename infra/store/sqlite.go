package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rosterd/rosterd/core/model"
)

const dateLayout = "2006-01-02"

// SQLiteStore persists scheduling resources and generated assignments in a
// SQLite database. It implements roster.ResourceProvider.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS employees (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    emp_group TEXT NOT NULL,
    contracted_hours REAL NOT NULL,
    is_keyholder INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS shift_templates (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    duration_hours REAL NOT NULL DEFAULT 0,
    shift_type TEXT NOT NULL,
    requires_break INTEGER NOT NULL DEFAULT 0,
    active_days TEXT NOT NULL,
    min_employees INTEGER NOT NULL DEFAULT 1,
    max_employees INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS coverage_requirements (
    id INTEGER PRIMARY KEY,
    day_index INTEGER NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT NOT NULL,
    min_employees INTEGER NOT NULL,
    max_employees INTEGER NOT NULL DEFAULT 0,
    allowed_groups TEXT NOT NULL DEFAULT '',
    requires_keyholder INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS absences (
    id INTEGER PRIMARY KEY,
    employee_id INTEGER NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    absence_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS availabilities (
    id INTEGER PRIMARY KEY,
    employee_id INTEGER NOT NULL,
    day_of_week INTEGER NOT NULL,
    hour INTEGER NOT NULL,
    is_available INTEGER NOT NULL,
    avail_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    min_rest_hours REAL NOT NULL,
    max_daily_hours REAL NOT NULL,
    max_weekly_hours REAL NOT NULL,
    week_start INTEGER NOT NULL,
    contracted_hours_threshold REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS assignments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    employee_id INTEGER NOT NULL,
    shift_id INTEGER,
    status TEXT NOT NULL,
    version INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assignments_version ON assignments(version);
`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Employees returns all employee records.
func (s *SQLiteStore) Employees(ctx context.Context) ([]model.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, emp_group, contracted_hours, is_keyholder, is_active FROM employees ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Employee
	for rows.Next() {
		var e model.Employee
		var group string
		if err := rows.Scan(&e.ID, &e.Name, &group, &e.ContractedHours, &e.IsKeyholder, &e.IsActive); err != nil {
			return nil, err
		}
		g, err := model.ParseEmployeeGroup(group)
		if err != nil {
			return nil, fmt.Errorf("employee %d: %w", e.ID, err)
		}
		e.Group = g
		res = append(res, e)
	}
	return res, rows.Err()
}

// ShiftTemplates returns all shift template records.
func (s *SQLiteStore) ShiftTemplates(ctx context.Context) ([]model.ShiftTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, start_time, end_time, duration_hours, shift_type, requires_break, active_days, min_employees, max_employees, is_active FROM shift_templates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.ShiftTemplate
	for rows.Next() {
		var t model.ShiftTemplate
		var shiftType, days string
		if err := rows.Scan(&t.ID, &t.Name, &t.Start, &t.End, &t.DurationHours, &shiftType, &t.RequiresBreak, &days, &t.MinEmployees, &t.MaxEmployees, &t.IsActive); err != nil {
			return nil, err
		}
		st, err := model.ParseShiftType(shiftType)
		if err != nil {
			return nil, fmt.Errorf("shift template %d: %w", t.ID, err)
		}
		t.Type = st
		t.ActiveDays, err = parseDayMask(days)
		if err != nil {
			return nil, fmt.Errorf("shift template %d: %w", t.ID, err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// CoverageRequirements returns all coverage records.
func (s *SQLiteStore) CoverageRequirements(ctx context.Context) ([]model.CoverageRequirement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day_index, start_time, end_time, min_employees, max_employees, allowed_groups, requires_keyholder FROM coverage_requirements ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.CoverageRequirement
	for rows.Next() {
		var c model.CoverageRequirement
		var groups string
		if err := rows.Scan(&c.ID, &c.DayIndex, &c.Start, &c.End, &c.MinEmployees, &c.MaxEmployees, &groups, &c.RequiresKeyholder); err != nil {
			return nil, err
		}
		gs, err := parseGroupList(groups)
		if err != nil {
			return nil, fmt.Errorf("coverage %d: %w", c.ID, err)
		}
		c.AllowedGroups = gs
		res = append(res, c)
	}
	return res, rows.Err()
}

// Absences returns absence records intersecting the date span.
func (s *SQLiteStore) Absences(ctx context.Context, start, end time.Time) ([]model.Absence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, start_date, end_date, absence_type FROM absences WHERE end_date >= ? AND start_date <= ? ORDER BY id`,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Absence
	for rows.Next() {
		var a model.Absence
		var sd, ed, typ string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &sd, &ed, &typ); err != nil {
			return nil, err
		}
		if a.Start, err = time.Parse(dateLayout, sd); err != nil {
			return nil, fmt.Errorf("absence %d: %w", a.ID, err)
		}
		if a.End, err = time.Parse(dateLayout, ed); err != nil {
			return nil, fmt.Errorf("absence %d: %w", a.ID, err)
		}
		at, err := model.ParseAbsenceType(typ)
		if err != nil {
			return nil, fmt.Errorf("absence %d: %w", a.ID, err)
		}
		a.Type = at
		res = append(res, a)
	}
	return res, rows.Err()
}

// Availabilities returns all availability records.
func (s *SQLiteStore) Availabilities(ctx context.Context) ([]model.Availability, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, day_of_week, hour, is_available, avail_type FROM availabilities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Availability
	for rows.Next() {
		var a model.Availability
		var typ string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.DayOfWeek, &a.Hour, &a.IsAvailable, &typ); err != nil {
			return nil, err
		}
		at, err := model.ParseAvailabilityType(typ)
		if err != nil {
			return nil, fmt.Errorf("availability %d: %w", a.ID, err)
		}
		a.Type = at
		res = append(res, a)
	}
	return res, rows.Err()
}

// Settings returns the single settings row.
func (s *SQLiteStore) Settings(ctx context.Context) (model.Settings, error) {
	var set model.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT min_rest_hours, max_daily_hours, max_weekly_hours, week_start, contracted_hours_threshold FROM settings WHERE id = 1`).
		Scan(&set.MinRestHours, &set.MaxDailyHours, &set.MaxWeeklyHours, &set.WeekStart, &set.ContractedHoursThreshold)
	if err == sql.ErrNoRows {
		return set, fmt.Errorf("settings row not found")
	}
	return set, err
}

// NextVersion returns the highest stored schedule version plus one.
func (s *SQLiteStore) NextVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM assignments`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64) + 1, nil
}

// CommitSchedule writes all assignments of one run in a single transaction.
// Either every record is stored or none is.
func (s *SQLiteStore) CommitSchedule(ctx context.Context, assignments []model.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (date, employee_id, shift_id, status, version) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, a := range assignments {
		var shiftID any
		if a.ShiftID != nil {
			shiftID = *a.ShiftID
		}
		if _, err := stmt.ExecContext(ctx, a.Date.Format(dateLayout), a.EmployeeID, shiftID, string(a.Status), a.Version); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Assignments returns the stored assignments of one version in date order.
func (s *SQLiteStore) Assignments(ctx context.Context, version int) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, employee_id, shift_id, status, version FROM assignments WHERE version = ? ORDER BY date, employee_id`, version)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var d, status string
		var shiftID sql.NullInt64
		if err := rows.Scan(&d, &a.EmployeeID, &shiftID, &status, &a.Version); err != nil {
			return nil, err
		}
		if a.Date, err = time.Parse(dateLayout, d); err != nil {
			return nil, err
		}
		if shiftID.Valid {
			id := int(shiftID.Int64)
			a.ShiftID = &id
		}
		st, err := model.ParseAssignmentStatus(status)
		if err != nil {
			return nil, err
		}
		a.Status = st
		res = append(res, a)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// parseDayMask decodes a seven character 0/1 string into the weekday mask.
func parseDayMask(mask string) ([7]bool, error) {
	var days [7]bool
	if len(mask) != 7 {
		return days, fmt.Errorf("day mask %q must have 7 characters", mask)
	}
	for i, c := range mask {
		switch c {
		case '1':
			days[i] = true
		case '0':
		default:
			return days, fmt.Errorf("day mask %q contains %q", mask, c)
		}
	}
	return days, nil
}

// parseGroupList decodes a comma separated group list; empty means any.
func parseGroupList(groups string) ([]model.EmployeeGroup, error) {
	if strings.TrimSpace(groups) == "" {
		return nil, nil
	}
	var out []model.EmployeeGroup
	for _, part := range strings.Split(groups, ",") {
		g, err := model.ParseEmployeeGroup(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
