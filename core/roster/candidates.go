package roster

import (
	"sort"
	"time"

	"github.com/rosterd/rosterd/core/model"
)

// placed is one assignment made during the run, with resolved times.
type placed struct {
	inst  ShiftInstance
	start time.Time
	end   time.Time
}

type dayKey struct {
	employee int
	day      int64 // unix seconds of the date's midnight
}

type weekKey struct {
	employee int
	week     int // ISO year*100 + week
}

// run carries the mutable bookkeeping of one generation: everything the
// hard filters need to answer "can this employee take this shift".
type run struct {
	snap       *Snapshot
	cfg        Config
	byEmployee map[int][]placed // sorted by start time
	dayHours   map[dayKey]float64
	weekHours  map[weekKey]float64
	shiftCount map[int]int
	warnings   []Warning
}

func newRun(snap *Snapshot, cfg Config) *run {
	return &run{
		snap:       snap,
		cfg:        cfg,
		byEmployee: make(map[int][]placed),
		dayHours:   make(map[dayKey]float64),
		weekHours:  make(map[weekKey]float64),
		shiftCount: make(map[int]int),
	}
}

func (r *run) add(employeeID int, p placed) {
	list := r.byEmployee[employeeID]
	idx := sort.Search(len(list), func(i int) bool { return list[i].start.After(p.start) })
	list = append(list, placed{})
	copy(list[idx+1:], list[idx:])
	list[idx] = p
	r.byEmployee[employeeID] = list
	r.dayHours[dayKey{employeeID, p.inst.Date.Unix()}] += p.inst.DurationHours
	r.weekHours[weekKey{employeeID, isoWeekKey(p.inst.Date)}] += p.inst.DurationHours
	r.shiftCount[employeeID]++
}

func (r *run) remove(employeeID int, p placed) {
	list := r.byEmployee[employeeID]
	for i := range list {
		if list[i].inst.TemplateID == p.inst.TemplateID && list[i].start.Equal(p.start) {
			r.byEmployee[employeeID] = append(list[:i:i], list[i+1:]...)
			r.dayHours[dayKey{employeeID, p.inst.Date.Unix()}] -= p.inst.DurationHours
			r.weekHours[weekKey{employeeID, isoWeekKey(p.inst.Date)}] -= p.inst.DurationHours
			r.shiftCount[employeeID]--
			return
		}
	}
}

func (r *run) assignedOn(employeeID int, date time.Time) bool {
	for _, p := range r.byEmployee[employeeID] {
		if p.inst.Date.Equal(date) {
			return true
		}
	}
	return false
}

// availabilitySpan walks every hour the shift touches, following the span
// into the next day when it crosses midnight. It reports whether the
// employee may work all of them and the weakest availability type found.
func (r *run) availabilitySpan(employeeID int, inst ShiftInstance) (bool, model.AvailabilityType) {
	worst := model.AvailabilityFixed
	startHour := inst.StartMin / 60
	endHour := (inst.EndMin + 59) / 60
	for h := startHour; h < endHour; h++ {
		day := inst.Date.AddDate(0, 0, h/24)
		at := r.snap.AvailabilityAt(employeeID, r.snap.DayIndex(day), h%24)
		if at == model.AvailabilityUnavailable {
			return false, at
		}
		if at.Rank() > worst.Rank() {
			worst = at
		}
	}
	return true, worst
}

// canTake applies every hard filter of the assignment engine. It returns
// the weakest availability type across the span for later ranking.
func (r *run) canTake(emp model.Employee, inst ShiftInstance) (bool, model.AvailabilityType) {
	if !emp.IsActive {
		return false, ""
	}
	if r.snap.AbsentOn(emp.ID, inst.Date) {
		return false, ""
	}
	if len(inst.AllowedGroups) > 0 {
		allowed := false
		for _, g := range inst.AllowedGroups {
			if g == emp.Group {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, ""
		}
	}
	ok, availType := r.availabilitySpan(emp.ID, inst)
	if !ok {
		return false, ""
	}
	// One assignment per employee and date; also guards time overlaps
	// within the date.
	if r.assignedOn(emp.ID, inst.Date) {
		return false, ""
	}
	if r.dayHours[dayKey{emp.ID, inst.Date.Unix()}]+inst.DurationHours > r.snap.Settings.MaxDailyHours {
		return false, ""
	}
	if r.weekHours[weekKey{emp.ID, isoWeekKey(inst.Date)}]+inst.DurationHours > r.snap.WeeklyMax(emp) {
		return false, ""
	}
	if r.cfg.EnforceRestPeriods && !r.restSatisfied(emp.ID, inst) {
		return false, ""
	}
	return true, availType
}

// restSatisfied checks the gap to the neighbouring assignments on both
// sides. The engine only ever adds chronologically, but the balancer moves
// assignments into the middle of an employee's sequence.
func (r *run) restSatisfied(employeeID int, inst ShiftInstance) bool {
	minRest := r.snap.Settings.MinRestHours
	if minRest <= 0 {
		return true
	}
	start := inst.StartTime()
	end := inst.EndTime()
	list := r.byEmployee[employeeID]
	idx := sort.Search(len(list), func(i int) bool { return list[i].start.After(start) })
	if idx > 0 {
		prev := list[idx-1]
		if start.Sub(prev.end).Hours() < minRest {
			return false
		}
	}
	if idx < len(list) {
		next := list[idx]
		if next.start.Sub(end).Hours() < minRest {
			return false
		}
	}
	return true
}

type candidate struct {
	emp       model.Employee
	availType model.AvailabilityType
	deficit   float64 // week hours minus contracted, lower means more needed
	count     int     // shifts assigned this run
}

// candidatesFor builds the ranked pool for one shift slot. The order is
// deterministic: keyholders first while the shift still needs one, then
// availability strength, hours deficit, run shift count and finally the
// employee id.
func (r *run) candidatesFor(inst ShiftInstance, keyholderNeeded bool) []candidate {
	var pool []candidate
	for _, emp := range r.snap.Employees {
		ok, availType := r.canTake(emp, inst)
		if !ok {
			continue
		}
		week := r.weekHours[weekKey{emp.ID, isoWeekKey(inst.Date)}]
		pool = append(pool, candidate{
			emp:       emp,
			availType: availType,
			deficit:   week - emp.ContractedHours,
			count:     r.shiftCount[emp.ID],
		})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if keyholderNeeded && a.emp.IsKeyholder != b.emp.IsKeyholder {
			return a.emp.IsKeyholder
		}
		if a.availType.Rank() != b.availType.Rank() {
			return a.availType.Rank() < b.availType.Rank()
		}
		if a.deficit != b.deficit {
			return a.deficit < b.deficit
		}
		if a.count != b.count {
			return a.count < b.count
		}
		return a.emp.ID < b.emp.ID
	})
	return pool
}
