package roster

import (
	"time"

	"github.com/rosterd/rosterd/core/model"
)

const (
	earlyStartHour = 10 // shifts starting at or before this hour are early
	lateEndHour    = 19 // shifts ending at or after this hour are late
)

// ShiftInstance is one concrete shift on one date, expanded from a
// template and bound to the best matching coverage interval.
type ShiftInstance struct {
	TemplateID        int
	Date              time.Time
	StartMin          int // minutes after midnight
	EndMin            int // exceeds 1440 when the shift crosses midnight
	DurationHours     float64
	Type              model.ShiftType
	RequiresKeyholder bool
	MinEmployees      int
	MaxEmployees      int // zero means uncapped
	AllowedGroups     []model.EmployeeGroup
	Matched           bool // a coverage interval supplied the staffing target
}

// StartTime anchors the shift start on its date.
func (s ShiftInstance) StartTime() time.Time { return clockTime(s.Date, s.StartMin) }

// EndTime anchors the shift end, rolling past midnight when needed.
func (s ShiftInstance) EndTime() time.Time { return clockTime(s.Date, s.EndMin) }

// classifyShift derives the shift type from resolved times. The start
// threshold wins when both hold.
func classifyShift(startMin, endMin int) model.ShiftType {
	startHour := startMin / 60
	endHour := (endMin % minutesPerDay) / 60
	if startHour <= earlyStartHour {
		return model.ShiftEarly
	}
	if endHour >= lateEndHour {
		return model.ShiftLate
	}
	return model.ShiftMiddle
}

// ExpandShifts produces the concrete shift instances of one date from the
// active templates whose weekday mask includes it, binding each to the
// coverage interval it overlaps most. Unmatched instances keep the
// template's intrinsic staffing bounds, defaulting to one employee.
func ExpandShifts(snap *Snapshot, date time.Time, coverage []CoverageInterval) []ShiftInstance {
	dayIdx := snap.DayIndex(date)
	var instances []ShiftInstance
	for _, tpl := range snap.Templates {
		if !tpl.ActiveOn(dayIdx) {
			continue
		}
		startMin, err := ParseClock(tpl.Start)
		if err != nil {
			continue // validated at load, cannot happen
		}
		endMin, err := ParseClock(tpl.End)
		if err != nil {
			continue
		}
		if endMin <= startMin {
			endMin += minutesPerDay
		}

		inst := ShiftInstance{
			TemplateID:    tpl.ID,
			Date:          date,
			StartMin:      startMin,
			EndMin:        endMin,
			DurationHours: float64(endMin-startMin) / 60,
			Type:          classifyShift(startMin, endMin),
		}
		inst.RequiresKeyholder = inst.Type == model.ShiftEarly || inst.Type == model.ShiftLate

		if best, ok := bestOverlap(inst, coverage); ok {
			inst.Matched = true
			inst.MinEmployees = best.MinEmployees
			inst.MaxEmployees = best.MaxEmployees
			inst.AllowedGroups = best.AllowedGroups
			inst.RequiresKeyholder = best.RequiresKeyholder
		} else {
			inst.MinEmployees = tpl.MinEmployees
			inst.MaxEmployees = tpl.MaxEmployees
			if inst.MinEmployees <= 0 {
				inst.MinEmployees = 1
			}
			if inst.MaxEmployees <= 0 {
				inst.MaxEmployees = inst.MinEmployees
			}
		}
		instances = append(instances, inst)
	}
	return instances
}

func bestOverlap(inst ShiftInstance, coverage []CoverageInterval) (CoverageInterval, bool) {
	var best CoverageInterval
	bestLen := 0
	for _, iv := range coverage {
		if l := overlapMinutes(inst.StartMin, inst.EndMin, iv.Start, iv.End); l > bestLen {
			best = iv
			bestLen = l
		}
	}
	return best, bestLen > 0
}
