package roster

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/rosterd/rosterd/core/model"
)

// RulesConfig enables and tunes the validation rules. All rules are
// independent; a disabled rule emits nothing.
type RulesConfig struct {
	ContractedHours         bool `json:"contracted_hours"`
	KeyholderCoverage       bool `json:"keyholder_coverage"`
	RestPeriods             bool `json:"rest_periods"`
	MaxDailyHours           bool `json:"max_daily_hours"`
	MaxWeeklyHours          bool `json:"max_weekly_hours"`
	GroupHourBounds         bool `json:"group_hour_bounds"`
	ConsecutiveDays         bool `json:"consecutive_days"`
	WeekendFairness         bool `json:"weekend_fairness"`
	ShiftTypeFairness       bool `json:"shift_type_fairness"`
	Breaks                  bool `json:"breaks"`
	AvailabilityConformance bool `json:"availability_conformance"`
	QualificationMatch      bool `json:"qualification_match"`
	OpeningHours            bool `json:"opening_hours"`
	MinimumCoverage         bool `json:"minimum_coverage"`
	OverlappingAssignments  bool `json:"overlapping_assignments"`
	DuplicateAssignments    bool `json:"duplicate_assignments"`
	AbsenceConflicts        bool `json:"absence_conflicts"`
	InactiveEmployees       bool `json:"inactive_employees"`

	// ContractedHoursThreshold overrides the snapshot settings value
	// when positive.
	ContractedHoursThreshold float64 `json:"contracted_hours_threshold"`
	// MaxConsecutiveDays defaults to six.
	MaxConsecutiveDays int `json:"max_consecutive_days"`
	// FairnessTolerance is the standard deviation of per-employee counts
	// above which a distribution is flagged.
	FairnessTolerance float64 `json:"fairness_tolerance"`
}

// DefaultRulesConfig enables every rule with default thresholds.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		ContractedHours:         true,
		KeyholderCoverage:       true,
		RestPeriods:             true,
		MaxDailyHours:           true,
		MaxWeeklyHours:          true,
		GroupHourBounds:         true,
		ConsecutiveDays:         true,
		WeekendFairness:         true,
		ShiftTypeFairness:       true,
		Breaks:                  true,
		AvailabilityConformance: true,
		QualificationMatch:      true,
		OpeningHours:            true,
		MinimumCoverage:         true,
		OverlappingAssignments:  true,
		DuplicateAssignments:    true,
		AbsenceConflicts:        true,
		InactiveEmployees:       true,
		MaxConsecutiveDays:      6,
		FairnessTolerance:       1.5,
	}
}

// Validate checks thresholds.
func (c RulesConfig) Validate() error {
	if c.ContractedHoursThreshold < 0 || c.ContractedHoursThreshold > 1 {
		return &ConfigurationError{Reason: "contracted hours threshold out of range"}
	}
	if c.MaxConsecutiveDays < 0 {
		return &ConfigurationError{Reason: "max consecutive days must not be negative"}
	}
	if c.FairnessTolerance < 0 {
		return &ConfigurationError{Reason: "fairness tolerance must not be negative"}
	}
	return nil
}

// Validator runs the enabled rules over a finished assignment set. It is
// stateless and never mutates the schedule; findings are purely
// diagnostic.
type Validator struct {
	cfg RulesConfig
}

// NewValidator creates a validator for the given rule configuration.
func NewValidator(cfg RulesConfig) *Validator {
	if cfg.MaxConsecutiveDays == 0 {
		cfg.MaxConsecutiveDays = 6
	}
	return &Validator{cfg: cfg}
}

// resolvedAssignment joins an assignment with its shift instance.
type resolvedAssignment struct {
	a    model.Assignment
	inst ShiftInstance
}

// validationRun is the shared working set the rules scan.
type validationRun struct {
	snap     *Snapshot
	all      []model.Assignment
	filled   []resolvedAssignment         // sorted by employee, then start
	byEmp    map[int][]resolvedAssignment // sorted by start
	perDate  map[int64][]ShiftInstance    // expanded instances per date
	coverage map[int64][]CoverageInterval
}

// Validate runs every enabled rule and returns their findings.
func (v *Validator) Validate(snap *Snapshot, assignments []model.Assignment) []ValidationError {
	vr := newValidationRun(snap, assignments)
	type rule struct {
		enabled bool
		check   func(*validationRun) []ValidationError
	}
	rules := []rule{
		{v.cfg.ContractedHours, v.checkContractedHours},
		{v.cfg.KeyholderCoverage, v.checkKeyholderCoverage},
		{v.cfg.RestPeriods, v.checkRestPeriods},
		{v.cfg.MaxDailyHours, v.checkMaxDailyHours},
		{v.cfg.MaxWeeklyHours, v.checkMaxWeeklyHours},
		{v.cfg.GroupHourBounds, v.checkGroupHourBounds},
		{v.cfg.ConsecutiveDays, v.checkConsecutiveDays},
		{v.cfg.WeekendFairness, v.checkWeekendFairness},
		{v.cfg.ShiftTypeFairness, v.checkShiftTypeFairness},
		{v.cfg.Breaks, v.checkBreaks},
		{v.cfg.AvailabilityConformance, v.checkAvailability},
		{v.cfg.QualificationMatch, v.checkQualification},
		{v.cfg.OpeningHours, v.checkOpeningHours},
		{v.cfg.MinimumCoverage, v.checkMinimumCoverage},
		{v.cfg.OverlappingAssignments, v.checkOverlaps},
		{v.cfg.DuplicateAssignments, v.checkDuplicates},
		{v.cfg.AbsenceConflicts, v.checkAbsences},
		{v.cfg.InactiveEmployees, v.checkInactive},
	}
	var findings []ValidationError
	for _, r := range rules {
		if r.enabled {
			findings = append(findings, r.check(vr)...)
		}
	}
	return findings
}

func newValidationRun(snap *Snapshot, assignments []model.Assignment) *validationRun {
	vr := &validationRun{
		snap:     snap,
		all:      assignments,
		byEmp:    make(map[int][]resolvedAssignment),
		perDate:  make(map[int64][]ShiftInstance),
		coverage: make(map[int64][]CoverageInterval),
	}
	seen := make(map[int64]bool)
	for _, a := range assignments {
		key := a.Date.Unix()
		if !seen[key] {
			seen[key] = true
			intervals, err := BuildCoverage(snap, a.Date)
			if err == nil {
				vr.coverage[key] = intervals
			}
			vr.perDate[key] = ExpandShifts(snap, a.Date, vr.coverage[key])
		}
		if !a.HasShift() {
			continue
		}
		inst, ok := instanceFor(vr.perDate[key], *a.ShiftID)
		if !ok {
			continue
		}
		ra := resolvedAssignment{a: a, inst: inst}
		vr.filled = append(vr.filled, ra)
		vr.byEmp[a.EmployeeID] = append(vr.byEmp[a.EmployeeID], ra)
	}
	for id := range vr.byEmp {
		list := vr.byEmp[id]
		sort.Slice(list, func(i, j int) bool { return list[i].inst.StartTime().Before(list[j].inst.StartTime()) })
		vr.byEmp[id] = list
	}
	return vr
}

func instanceFor(instances []ShiftInstance, templateID int) (ShiftInstance, bool) {
	for _, inst := range instances {
		if inst.TemplateID == templateID {
			return inst, true
		}
	}
	return ShiftInstance{}, false
}

func (v *Validator) contractedThreshold(snap *Snapshot) float64 {
	if v.cfg.ContractedHoursThreshold > 0 {
		return v.cfg.ContractedHoursThreshold
	}
	return snap.Settings.ContractedHoursThreshold
}

func (v *Validator) checkContractedHours(vr *validationRun) []ValidationError {
	threshold := v.contractedThreshold(vr.snap)
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		if !emp.IsActive || emp.ContractedHours <= 0 {
			continue
		}
		weeks := make(map[int]float64)
		for _, ra := range vr.byEmp[emp.ID] {
			weeks[isoWeekKey(ra.inst.Date)] += ra.inst.DurationHours
		}
		weekKeys := make([]int, 0, len(weeks))
		for wk := range weeks {
			weekKeys = append(weekKeys, wk)
		}
		sort.Ints(weekKeys)
		for _, wk := range weekKeys {
			if weeks[wk] < emp.ContractedHours*threshold {
				out = append(out, ValidationError{
					Kind:       "insufficient contracted hours",
					Severity:   SeverityWarning,
					Message:    fmt.Sprintf("employee %d has %.1f of %.1f contracted hours in week %d", emp.ID, weeks[wk], emp.ContractedHours, wk%100),
					EmployeeID: emp.ID,
				})
			}
		}
	}
	return out
}

func (v *Validator) checkKeyholderCoverage(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range groupByInstance(vr) {
		if !ra.inst.RequiresKeyholder || len(ra.employees) == 0 {
			continue
		}
		has := false
		for _, id := range ra.employees {
			if emp, ok := vr.snap.Employee(id); ok && emp.IsKeyholder {
				has = true
				break
			}
		}
		if !has {
			out = append(out, ValidationError{
				Kind:     "keyholder missing",
				Severity: SeverityError,
				Message:  fmt.Sprintf("shift %d on %s has no keyholder assigned", ra.inst.TemplateID, ra.inst.Date.Format("2006-01-02")),
				Date:     ra.inst.Date,
			})
		}
	}
	return out
}

type instanceAssignees struct {
	inst      ShiftInstance
	employees []int
}

// groupByInstance collects the assignees of every expanded shift instance
// in deterministic date and template order.
func groupByInstance(vr *validationRun) []instanceAssignees {
	byKey := make(map[int64]map[int][]int)
	for _, ra := range vr.filled {
		key := ra.a.Date.Unix()
		if byKey[key] == nil {
			byKey[key] = make(map[int][]int)
		}
		byKey[key][ra.inst.TemplateID] = append(byKey[key][ra.inst.TemplateID], ra.a.EmployeeID)
	}
	keys := make([]int64, 0, len(vr.perDate))
	for key := range vr.perDate {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	var out []instanceAssignees
	for _, key := range keys {
		for _, inst := range vr.perDate[key] {
			ids := byKey[key][inst.TemplateID]
			sort.Ints(ids)
			out = append(out, instanceAssignees{inst: inst, employees: ids})
		}
	}
	return out
}

func (v *Validator) checkRestPeriods(vr *validationRun) []ValidationError {
	minRest := vr.snap.Settings.MinRestHours
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		list := vr.byEmp[emp.ID]
		for i := 1; i < len(list); i++ {
			gap := list[i].inst.StartTime().Sub(list[i-1].inst.EndTime()).Hours()
			if gap < minRest {
				out = append(out, ValidationError{
					Kind:       "rest period violation",
					Severity:   SeverityError,
					Message:    fmt.Sprintf("employee %d has %.1fh rest before %s, minimum is %.1fh", emp.ID, gap, list[i].inst.Date.Format("2006-01-02"), minRest),
					EmployeeID: emp.ID,
					Date:       list[i].inst.Date,
				})
			}
		}
	}
	return out
}

func (v *Validator) checkMaxDailyHours(vr *validationRun) []ValidationError {
	return v.checkHourTotals(vr, "max daily hours exceeded", func(ra resolvedAssignment) int64 {
		return ra.inst.Date.Unix()
	}, vr.snap.Settings.MaxDailyHours)
}

func (v *Validator) checkMaxWeeklyHours(vr *validationRun) []ValidationError {
	return v.checkHourTotals(vr, "max weekly hours exceeded", func(ra resolvedAssignment) int64 {
		return int64(isoWeekKey(ra.inst.Date))
	}, vr.snap.Settings.MaxWeeklyHours)
}

func (v *Validator) checkHourTotals(vr *validationRun, kind string, bucket func(resolvedAssignment) int64, limit float64) []ValidationError {
	if limit <= 0 {
		return nil
	}
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		totals := make(map[int64]float64)
		dates := make(map[int64]time.Time)
		for _, ra := range vr.byEmp[emp.ID] {
			b := bucket(ra)
			totals[b] += ra.inst.DurationHours
			if _, ok := dates[b]; !ok {
				dates[b] = ra.inst.Date
			}
		}
		buckets := make([]int64, 0, len(totals))
		for b := range totals {
			buckets = append(buckets, b)
		}
		sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })
		for _, b := range buckets {
			if totals[b] > limit {
				out = append(out, ValidationError{
					Kind:       kind,
					Severity:   SeverityError,
					Message:    fmt.Sprintf("employee %d works %.1fh, limit is %.1fh", emp.ID, totals[b], limit),
					EmployeeID: emp.ID,
					Date:       dates[b],
				})
			}
		}
	}
	return out
}

func (v *Validator) checkGroupHourBounds(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		max := emp.WeeklyMax()
		weeks := make(map[int]float64)
		for _, ra := range vr.byEmp[emp.ID] {
			weeks[isoWeekKey(ra.inst.Date)] += ra.inst.DurationHours
		}
		weekKeys := make([]int, 0, len(weeks))
		for wk := range weeks {
			weekKeys = append(weekKeys, wk)
		}
		sort.Ints(weekKeys)
		for _, wk := range weekKeys {
			if weeks[wk] > max {
				out = append(out, ValidationError{
					Kind:       "group hours exceeded",
					Severity:   SeverityError,
					Message:    fmt.Sprintf("employee %d (%s) works %.1fh in week %d, group maximum is %.1fh", emp.ID, emp.Group, weeks[wk], wk%100, max),
					EmployeeID: emp.ID,
				})
			}
		}
	}
	return out
}

func (v *Validator) checkConsecutiveDays(vr *validationRun) []ValidationError {
	limit := v.cfg.MaxConsecutiveDays
	if limit <= 0 {
		return nil
	}
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		list := vr.byEmp[emp.ID]
		streak := 0
		var prev time.Time
		for _, ra := range list {
			if !prev.IsZero() && ra.inst.Date.Sub(prev).Hours() == 24 {
				streak++
			} else if !ra.inst.Date.Equal(prev) {
				streak = 1
			}
			prev = ra.inst.Date
			if streak == limit+1 {
				out = append(out, ValidationError{
					Kind:       "too many consecutive days",
					Severity:   SeverityWarning,
					Message:    fmt.Sprintf("employee %d works more than %d consecutive days", emp.ID, limit),
					EmployeeID: emp.ID,
					Date:       ra.inst.Date,
				})
			}
		}
	}
	return out
}

func (v *Validator) checkWeekendFairness(vr *validationRun) []ValidationError {
	return v.checkDistribution(vr, "unfair weekend distribution", func(ra resolvedAssignment) bool {
		return isWeekend(ra.inst.Date)
	})
}

func (v *Validator) checkShiftTypeFairness(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, st := range []model.ShiftType{model.ShiftEarly, model.ShiftMiddle, model.ShiftLate} {
		st := st
		out = append(out, v.checkDistribution(vr, "unfair shift type distribution", func(ra resolvedAssignment) bool {
			return ra.inst.Type == st
		})...)
	}
	return out
}

func (v *Validator) checkDistribution(vr *validationRun, kind string, match func(resolvedAssignment) bool) []ValidationError {
	tolerance := v.cfg.FairnessTolerance
	if tolerance <= 0 {
		tolerance = 1.5
	}
	var counts []float64
	for _, emp := range vr.snap.Employees {
		if !emp.IsActive {
			continue
		}
		n := 0
		for _, ra := range vr.byEmp[emp.ID] {
			if match(ra) {
				n++
			}
		}
		counts = append(counts, float64(n))
	}
	if len(counts) < 2 {
		return nil
	}
	if std := stat.StdDev(counts, nil); std > tolerance {
		return []ValidationError{{
			Kind:     kind,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("count deviation %.2f exceeds tolerance %.2f", std, tolerance),
		}}
	}
	return nil
}

func (v *Validator) checkBreaks(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range vr.filled {
		if ra.inst.DurationHours <= 6 {
			continue
		}
		tpl, ok := vr.snap.Template(ra.inst.TemplateID)
		if ok && !tpl.RequiresBreak {
			out = append(out, ValidationError{
				Kind:       "missing break",
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("shift %d lasts %.1fh but has no break configured", ra.inst.TemplateID, ra.inst.DurationHours),
				EmployeeID: ra.a.EmployeeID,
				Date:       ra.a.Date,
			})
		}
	}
	return out
}

func (v *Validator) checkAvailability(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range vr.filled {
		startHour := ra.inst.StartMin / 60
		endHour := (ra.inst.EndMin + 59) / 60
		for h := startHour; h < endHour; h++ {
			day := ra.inst.Date.AddDate(0, 0, h/24)
			if vr.snap.AvailabilityAt(ra.a.EmployeeID, vr.snap.DayIndex(day), h%24) == model.AvailabilityUnavailable {
				out = append(out, ValidationError{
					Kind:       "availability violation",
					Severity:   SeverityError,
					Message:    fmt.Sprintf("employee %d is unavailable at %02d:00 on %s", ra.a.EmployeeID, h%24, day.Format("2006-01-02")),
					EmployeeID: ra.a.EmployeeID,
					Date:       ra.a.Date,
				})
				break
			}
		}
	}
	return out
}

func (v *Validator) checkQualification(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range vr.filled {
		if len(ra.inst.AllowedGroups) == 0 {
			continue
		}
		emp, ok := vr.snap.Employee(ra.a.EmployeeID)
		if !ok {
			continue
		}
		allowed := false
		for _, g := range ra.inst.AllowedGroups {
			if g == emp.Group {
				allowed = true
				break
			}
		}
		if !allowed {
			out = append(out, ValidationError{
				Kind:       "group not allowed",
				Severity:   SeverityError,
				Message:    fmt.Sprintf("employee %d (%s) is not eligible for shift %d", emp.ID, emp.Group, ra.inst.TemplateID),
				EmployeeID: emp.ID,
				Date:       ra.a.Date,
			})
		}
	}
	return out
}

func (v *Validator) checkOpeningHours(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range vr.filled {
		intervals := vr.coverage[ra.a.Date.Unix()]
		if len(intervals) == 0 {
			continue
		}
		inside := false
		for _, iv := range intervals {
			if iv.Overlaps(ra.inst.StartMin, ra.inst.EndMin) {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, ValidationError{
				Kind:       "outside opening hours",
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("shift %d on %s lies outside all coverage intervals", ra.inst.TemplateID, ra.a.Date.Format("2006-01-02")),
				EmployeeID: ra.a.EmployeeID,
				Date:       ra.a.Date,
			})
		}
	}
	return out
}

func (v *Validator) checkMinimumCoverage(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ia := range groupByInstance(vr) {
		if !ia.inst.Matched || ia.inst.MinEmployees <= 0 {
			continue
		}
		if len(ia.employees) < ia.inst.MinEmployees {
			out = append(out, ValidationError{
				Kind:     "insufficient coverage",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("shift %d on %s has %d of %d required employees", ia.inst.TemplateID, ia.inst.Date.Format("2006-01-02"), len(ia.employees), ia.inst.MinEmployees),
				Date:     ia.inst.Date,
			})
		}
	}
	return out
}

func (v *Validator) checkOverlaps(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		list := vr.byEmp[emp.ID]
		for i := 1; i < len(list); i++ {
			if list[i].inst.StartTime().Before(list[i-1].inst.EndTime()) {
				out = append(out, ValidationError{
					Kind:       "overlapping assignments",
					Severity:   SeverityError,
					Message:    fmt.Sprintf("employee %d has overlapping shifts on %s", emp.ID, list[i].inst.Date.Format("2006-01-02")),
					EmployeeID: emp.ID,
					Date:       list[i].inst.Date,
				})
			}
		}
	}
	return out
}

func (v *Validator) checkDuplicates(vr *validationRun) []ValidationError {
	// Every row counts here, placeholders included: a nil-shift row next
	// to a filled one is still two rows for one employee and date.
	perDate := make(map[int]map[int64]int)
	for _, a := range vr.all {
		if perDate[a.EmployeeID] == nil {
			perDate[a.EmployeeID] = make(map[int64]int)
		}
		perDate[a.EmployeeID][a.Date.Unix()]++
	}
	var out []ValidationError
	for _, emp := range vr.snap.Employees {
		counts := perDate[emp.ID]
		dates := make([]int64, 0, len(counts))
		for d := range counts {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
		for _, d := range dates {
			if counts[d] > 1 {
				out = append(out, ValidationError{
					Kind:       "duplicate assignment",
					Severity:   SeverityError,
					Message:    fmt.Sprintf("employee %d has %d assignments on %s", emp.ID, counts[d], time.Unix(d, 0).UTC().Format("2006-01-02")),
					EmployeeID: emp.ID,
					Date:       time.Unix(d, 0).UTC(),
				})
			}
		}
	}
	return out
}

func (v *Validator) checkAbsences(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range vr.filled {
		if vr.snap.AbsentOn(ra.a.EmployeeID, ra.a.Date) {
			out = append(out, ValidationError{
				Kind:       "assigned during absence",
				Severity:   SeverityError,
				Message:    fmt.Sprintf("employee %d is absent on %s", ra.a.EmployeeID, ra.a.Date.Format("2006-01-02")),
				EmployeeID: ra.a.EmployeeID,
				Date:       ra.a.Date,
			})
		}
	}
	return out
}

func (v *Validator) checkInactive(vr *validationRun) []ValidationError {
	var out []ValidationError
	for _, ra := range vr.filled {
		emp, ok := vr.snap.Employee(ra.a.EmployeeID)
		if !ok || !emp.IsActive {
			out = append(out, ValidationError{
				Kind:       "inactive employee assigned",
				Severity:   SeverityError,
				Message:    fmt.Sprintf("employee %d is not active", ra.a.EmployeeID),
				EmployeeID: ra.a.EmployeeID,
				Date:       ra.a.Date,
			})
		}
	}
	return out
}
