package model

import "fmt"

// Settings holds the global scheduling parameters loaded with the
// snapshot. A run cannot start without them.
type Settings struct {
	MinRestHours             float64 // minimum gap between two shifts of one employee
	MaxDailyHours            float64
	MaxWeeklyHours           float64
	WeekStart                int     // 0 = Monday ... 6 = Sunday
	ContractedHoursThreshold float64 // fraction of contracted hours below which a warning fires
}

// SetDefaults applies sane defaults for unset fields.
func (s *Settings) SetDefaults() {
	if s.MinRestHours == 0 {
		s.MinRestHours = 11
	}
	if s.MaxDailyHours == 0 {
		s.MaxDailyHours = 10
	}
	if s.MaxWeeklyHours == 0 {
		s.MaxWeeklyHours = 48
	}
	if s.ContractedHoursThreshold == 0 {
		s.ContractedHoursThreshold = 0.75
	}
}

// Validate checks mandatory fields.
func (s Settings) Validate() error {
	if s.MinRestHours < 0 || s.MinRestHours >= 24 {
		return fmt.Errorf("min rest hours %.1f out of range", s.MinRestHours)
	}
	if s.MaxDailyHours <= 0 || s.MaxDailyHours > 24 {
		return fmt.Errorf("max daily hours %.1f out of range", s.MaxDailyHours)
	}
	if s.MaxWeeklyHours <= 0 || s.MaxWeeklyHours > 168 {
		return fmt.Errorf("max weekly hours %.1f out of range", s.MaxWeeklyHours)
	}
	if s.WeekStart < 0 || s.WeekStart > 6 {
		return fmt.Errorf("week start %d out of range", s.WeekStart)
	}
	if s.ContractedHoursThreshold <= 0 || s.ContractedHoursThreshold > 1 {
		return fmt.Errorf("contracted hours threshold %.2f out of range", s.ContractedHoursThreshold)
	}
	return nil
}
