package roster

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"8", 0, false},
		{"aa:bb", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseClock(%q) = %d, %v, want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseClock(%q) expected error", c.in)
		}
	}
}

func TestDurationHoursCrossesMidnight(t *testing.T) {
	d, err := DurationHours("22:00", "02:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 4.0 {
		t.Errorf("duration = %.1f, want 4.0", d)
	}
	d, err = DurationHours("08:00", "16:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 8.5 {
		t.Errorf("duration = %.1f, want 8.5", d)
	}
}

func TestRestHours(t *testing.T) {
	cases := []struct {
		end, next string
		want      float64
	}{
		{"17:00", "09:00", 16.0},
		{"22:00", "06:00", 8.0},
		{"09:00", "09:00", 24.0},
	}
	for _, c := range cases {
		got, err := RestHours(c.end, c.next)
		if err != nil {
			t.Fatalf("RestHours(%q, %q): %v", c.end, c.next, err)
		}
		if got != c.want {
			t.Errorf("RestHours(%q, %q) = %.1f, want %.1f", c.end, c.next, got, c.want)
		}
	}
}

func TestDayIndexFor(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if wd := monday.Weekday(); wd != time.Monday {
		t.Fatalf("fixture is %s, want Monday", wd)
	}
	if got := dayIndexFor(monday, 0); got != 0 {
		t.Errorf("Monday with Monday week start: index %d, want 0", got)
	}
	sunday := monday.AddDate(0, 0, 6)
	if got := dayIndexFor(sunday, 0); got != 6 {
		t.Errorf("Sunday with Monday week start: index %d, want 6", got)
	}
	// Sunday week start shifts everything by one.
	if got := dayIndexFor(sunday, 6); got != 0 {
		t.Errorf("Sunday with Sunday week start: index %d, want 0", got)
	}
	if got := dayIndexFor(monday, 6); got != 1 {
		t.Errorf("Monday with Sunday week start: index %d, want 1", got)
	}
}

func TestHoursSpanned(t *testing.T) {
	got := hoursSpanned(22*60, 2*60)
	want := []int{22, 23, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("hoursSpanned = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hoursSpanned = %v, want %v", got, want)
		}
	}
}

func TestIsoWeekKeyBuckets(t *testing.T) {
	// 2026-01-01 falls in ISO week 1 of 2026.
	a := isoWeekKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := isoWeekKey(time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC))
	if a != b {
		t.Errorf("same ISO week bucketed differently: %d vs %d", a, b)
	}
	c := isoWeekKey(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if c == a {
		t.Errorf("next ISO week shares bucket %d", c)
	}
}
