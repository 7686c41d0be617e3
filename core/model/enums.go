package model

import (
	"fmt"
	"strings"
)

// EmployeeGroup is the contractual tier of an employee. Each tier carries a
// weekly hour band used as a hard bound during assignment.
type EmployeeGroup string

const (
	GroupFullTime EmployeeGroup = "full_time"
	GroupPartTime EmployeeGroup = "part_time"
	GroupMarginal EmployeeGroup = "marginal"
	GroupTeamLead EmployeeGroup = "team_lead"
)

// groupAliases maps legacy codes found in older data sets to canonical
// groups. Translation happens once, when rows are decoded; everything past
// the snapshot boundary only sees canonical values.
var groupAliases = map[string]EmployeeGroup{
	"vz":        GroupFullTime,
	"vl":        GroupFullTime,
	"fulltime":  GroupFullTime,
	"full-time": GroupFullTime,
	"tz":        GroupPartTime,
	"parttime":  GroupPartTime,
	"part-time": GroupPartTime,
	"gfb":       GroupMarginal,
	"geringf":   GroupMarginal,
	"mini":      GroupMarginal,
	"tl":        GroupTeamLead,
	"lead":      GroupTeamLead,
	"teamlead":  GroupTeamLead,
}

// ParseEmployeeGroup resolves a raw code, accepting canonical values and
// legacy aliases in any casing.
func ParseEmployeeGroup(s string) (EmployeeGroup, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	switch EmployeeGroup(code) {
	case GroupFullTime, GroupPartTime, GroupMarginal, GroupTeamLead:
		return EmployeeGroup(code), nil
	}
	if g, ok := groupAliases[code]; ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown employee group %q", s)
}

// HourBand returns the minimum and maximum weekly hours for the group.
func (g EmployeeGroup) HourBand() (min, max float64) {
	switch g {
	case GroupFullTime:
		return 35, 40
	case GroupTeamLead:
		return 35, 40
	case GroupPartTime:
		return 10, 30
	case GroupMarginal:
		return 0, 12
	default:
		return 0, 0
	}
}

func (g EmployeeGroup) Valid() bool {
	switch g {
	case GroupFullTime, GroupPartTime, GroupMarginal, GroupTeamLead:
		return true
	}
	return false
}

func (g EmployeeGroup) String() string { return string(g) }

// ShiftType is the derived category of a shift template.
type ShiftType string

const (
	ShiftEarly  ShiftType = "early"
	ShiftMiddle ShiftType = "middle"
	ShiftLate   ShiftType = "late"
)

var shiftTypeAliases = map[string]ShiftType{
	"morning": ShiftEarly,
	"open":    ShiftEarly,
	"mid":     ShiftMiddle,
	"day":     ShiftMiddle,
	"evening": ShiftLate,
	"close":   ShiftLate,
}

// ParseShiftType resolves a raw code, accepting canonical values and legacy
// aliases in any casing.
func ParseShiftType(s string) (ShiftType, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	switch ShiftType(code) {
	case ShiftEarly, ShiftMiddle, ShiftLate:
		return ShiftType(code), nil
	}
	if t, ok := shiftTypeAliases[code]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown shift type %q", s)
}

func (t ShiftType) Valid() bool {
	switch t {
	case ShiftEarly, ShiftMiddle, ShiftLate:
		return true
	}
	return false
}

func (t ShiftType) String() string { return string(t) }

// AvailabilityType ranks how strongly an employee is bound to an hour.
// Fixed hours are obligatory, preferred hours are favoured during ranking,
// available hours are usable, unavailable hours block assignment.
type AvailabilityType string

const (
	AvailabilityFixed       AvailabilityType = "fixed"
	AvailabilityPreferred   AvailabilityType = "preferred"
	AvailabilityAvailable   AvailabilityType = "available"
	AvailabilityUnavailable AvailabilityType = "unavailable"
)

var availabilityAliases = map[string]AvailabilityType{
	"fix":        AvailabilityFixed,
	"obligatory": AvailabilityFixed,
	"prf":        AvailabilityPreferred,
	"prm":        AvailabilityPreferred,
	"avl":        AvailabilityAvailable,
	"general":    AvailabilityAvailable,
	"unv":        AvailabilityUnavailable,
	"blocked":    AvailabilityUnavailable,
}

// ParseAvailabilityType resolves a raw code, accepting canonical values and
// legacy aliases in any casing.
func ParseAvailabilityType(s string) (AvailabilityType, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	switch AvailabilityType(code) {
	case AvailabilityFixed, AvailabilityPreferred, AvailabilityAvailable, AvailabilityUnavailable:
		return AvailabilityType(code), nil
	}
	if t, ok := availabilityAliases[code]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown availability type %q", s)
}

func (t AvailabilityType) Valid() bool {
	switch t {
	case AvailabilityFixed, AvailabilityPreferred, AvailabilityAvailable, AvailabilityUnavailable:
		return true
	}
	return false
}

// Rank orders availability types for candidate ranking. Lower is better.
func (t AvailabilityType) Rank() int {
	switch t {
	case AvailabilityFixed:
		return 0
	case AvailabilityPreferred:
		return 1
	case AvailabilityAvailable:
		return 2
	default:
		return 3
	}
}

func (t AvailabilityType) String() string { return string(t) }

// AbsenceType describes why an employee is absent.
type AbsenceType string

const (
	AbsenceVacation AbsenceType = "vacation"
	AbsenceSick     AbsenceType = "sick"
	AbsenceOther    AbsenceType = "other"
)

var absenceAliases = map[string]AbsenceType{
	"urlaub":   AbsenceVacation,
	"holiday":  AbsenceVacation,
	"krank":    AbsenceSick,
	"sickness": AbsenceSick,
	"sonstige": AbsenceOther,
	"misc":     AbsenceOther,
}

// ParseAbsenceType resolves a raw code, accepting canonical values and
// legacy aliases in any casing.
func ParseAbsenceType(s string) (AbsenceType, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	switch AbsenceType(code) {
	case AbsenceVacation, AbsenceSick, AbsenceOther:
		return AbsenceType(code), nil
	}
	if t, ok := absenceAliases[code]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown absence type %q", s)
}

func (t AbsenceType) Valid() bool {
	switch t {
	case AbsenceVacation, AbsenceSick, AbsenceOther:
		return true
	}
	return false
}

// AssignmentStatus is the lifecycle state of a stored assignment.
type AssignmentStatus string

const (
	StatusDraft     AssignmentStatus = "draft"
	StatusPublished AssignmentStatus = "published"
	StatusArchived  AssignmentStatus = "archived"
)

// ParseAssignmentStatus resolves a raw status code.
func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	code := strings.ToLower(strings.TrimSpace(s))
	switch AssignmentStatus(code) {
	case StatusDraft, StatusPublished, StatusArchived:
		return AssignmentStatus(code), nil
	}
	return "", fmt.Errorf("unknown assignment status %q", s)
}

func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s AssignmentStatus) String() string { return string(s) }
