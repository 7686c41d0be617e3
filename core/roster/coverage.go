package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/rosterd/rosterd/core/model"
)

// CoverageInterval is one staffing target on a concrete date. Times are
// minutes after midnight; End exceeds 1440 when the interval crosses
// midnight.
type CoverageInterval struct {
	Start             int
	End               int
	MinEmployees      int
	MaxEmployees      int // zero means uncapped
	AllowedGroups     []model.EmployeeGroup
	RequiresKeyholder bool
}

// Overlaps reports whether the interval intersects the given span.
func (c CoverageInterval) Overlaps(start, end int) bool {
	return overlapMinutes(c.Start, c.End, start, end) > 0
}

func (c CoverageInterval) sameDemand(o CoverageInterval) bool {
	if c.MinEmployees != o.MinEmployees || c.MaxEmployees != o.MaxEmployees || c.RequiresKeyholder != o.RequiresKeyholder {
		return false
	}
	if len(c.AllowedGroups) != len(o.AllowedGroups) {
		return false
	}
	want := make(map[model.EmployeeGroup]bool, len(c.AllowedGroups))
	for _, g := range c.AllowedGroups {
		want[g] = true
	}
	for _, g := range o.AllowedGroups {
		if !want[g] {
			return false
		}
	}
	return true
}

// BuildCoverage resolves the coverage requirements of one date into an
// ordered list of intervals. Overlapping or adjacent intervals with
// identical demands are merged; differing ones stay distinct. A date
// without coverage yields an empty list.
func BuildCoverage(snap *Snapshot, date time.Time) ([]CoverageInterval, error) {
	reqs := snap.coverage[snap.DayIndex(date)]
	if len(reqs) == 0 {
		return nil, nil
	}

	intervals := make([]CoverageInterval, 0, len(reqs))
	for _, r := range reqs {
		start, err := ParseClock(r.Start)
		if err != nil {
			return nil, fmt.Errorf("coverage %d: %w", r.ID, err)
		}
		end, err := ParseClock(r.End)
		if err != nil {
			return nil, fmt.Errorf("coverage %d: %w", r.ID, err)
		}
		if end <= start {
			end += minutesPerDay
		}
		intervals = append(intervals, CoverageInterval{
			Start:             start,
			End:               end,
			MinEmployees:      r.MinEmployees,
			MaxEmployees:      r.MaxEmployees,
			AllowedGroups:     append([]model.EmployeeGroup(nil), r.AllowedGroups...),
			RequiresKeyholder: r.RequiresKeyholder,
		})
	}
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Start != intervals[j].Start {
			return intervals[i].Start < intervals[j].Start
		}
		return intervals[i].End < intervals[j].End
	})

	merged := intervals[:1]
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End && iv.sameDemand(*last) {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged, nil
}

// overlapMinutes returns the length of the intersection of two spans given
// in minutes after midnight. Spans crossing midnight are compared in both
// alignments so a late shift still matches early-morning coverage.
func overlapMinutes(aStart, aEnd, bStart, bEnd int) int {
	best := rawOverlap(aStart, aEnd, bStart, bEnd)
	if v := rawOverlap(aStart, aEnd, bStart+minutesPerDay, bEnd+minutesPerDay); v > best {
		best = v
	}
	if v := rawOverlap(aStart+minutesPerDay, aEnd+minutesPerDay, bStart, bEnd); v > best {
		best = v
	}
	return best
}

func rawOverlap(aStart, aEnd, bStart, bEnd int) int {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
