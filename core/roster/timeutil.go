package roster

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ParseClock converts a "HH:MM" wall-clock string into minutes after
// midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(min int) string {
	min = ((min % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// DurationHours computes the length of a shift given its wall-clock bounds.
// When end is at or before start the shift crosses midnight and the end is
// shifted by 24 hours: duration("22:00","02:00") is 4.
func DurationHours(start, end string) (float64, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		e += minutesPerDay
	}
	return float64(e-s) / 60, nil
}

// RestHours computes the gap between the end of one shift and the start of
// the next, assuming the next start is the first occurrence of that wall
// clock after the end: rest("17:00","09:00") is 16, rest("22:00","06:00")
// is 8.
func RestHours(end, nextStart string) (float64, error) {
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	s, err := ParseClock(nextStart)
	if err != nil {
		return 0, err
	}
	diff := s - e
	if diff <= 0 {
		diff += minutesPerDay
	}
	return float64(diff) / 60, nil
}

// clockTime anchors minutes after midnight on a date. Minutes beyond the
// day roll over naturally.
func clockTime(date time.Time, min int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).
		Add(time.Duration(min) * time.Minute)
}

// dayIndexFor maps a date to its day index relative to the configured week
// start (0 = Monday ... 6 = Sunday).
func dayIndexFor(date time.Time, weekStart int) int {
	// time.Weekday has Sunday = 0; the week-start setting counts from Monday.
	startWd := (weekStart + 1) % 7
	return (int(date.Weekday()) - startWd + 7) % 7
}

// isoWeekKey buckets a date into its ISO year and week for hour totals.
func isoWeekKey(date time.Time) int {
	y, w := date.ISOWeek()
	return y*100 + w
}

// isWeekend reports whether the date falls on Saturday or Sunday.
func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// hoursSpanned lists the wall-clock hours a shift touches, wrapping past
// midnight. A shift from 22:00 to 02:00 spans hours 22, 23, 0 and 1.
func hoursSpanned(startMin, endMin int) []int {
	if endMin <= startMin {
		endMin += minutesPerDay
	}
	var hours []int
	for h := startMin / 60; h*60 < endMin; h++ {
		hours = append(hours, h%24)
	}
	return hours
}
