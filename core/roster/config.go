package roster

import "time"

// Config tunes one generation run. Boolean enforce flags default to on;
// use DefaultConfig as the base when loading from file so an absent key
// keeps its default.
type Config struct {
	// EnforceRestPeriods applies the minimum rest gap as a hard filter.
	EnforceRestPeriods bool `json:"enforce_rest_periods"`
	// EnforceKeyholder records a warning instead of filling keyholder
	// slots with whoever is left.
	EnforceKeyholder bool `json:"enforce_keyholder"`
	// TimeoutSeconds bounds the whole run; zero disables the limit.
	TimeoutSeconds int `json:"timeout_seconds"`

	Balancer BalancerConfig `json:"balancer"`
	Rules    RulesConfig    `json:"rules"`
}

// BalancerConfig controls the fairness post-pass.
type BalancerConfig struct {
	Enabled bool `json:"enabled"`
	// MaxIterations bounds the swap search. Zero means twice the number
	// of employees in the snapshot.
	MaxIterations int `json:"max_iterations"`
}

// DefaultConfig returns the run configuration with all enforcement on.
func DefaultConfig() Config {
	return Config{
		EnforceRestPeriods: true,
		EnforceKeyholder:   true,
		Balancer:           BalancerConfig{Enabled: true},
		Rules:              DefaultRulesConfig(),
	}
}

// Validate checks for contradictory settings.
func (c Config) Validate() error {
	if c.TimeoutSeconds < 0 {
		return &ConfigurationError{Reason: "timeout must not be negative"}
	}
	if c.Balancer.MaxIterations < 0 {
		return &ConfigurationError{Reason: "balancer iterations must not be negative"}
	}
	return c.Rules.Validate()
}

// Request describes one generation run over a date range.
type Request struct {
	Start time.Time
	End   time.Time
	// CreateEmptySchedules emits placeholder assignments for active
	// employees without work on a date.
	CreateEmptySchedules bool
	// Version tags all assignments of this run. Zero lets the caller's
	// store allocate the next version before generating.
	Version int
}

// Validate checks the date range.
func (r Request) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return &ConfigurationError{Reason: "start and end dates are required"}
	}
	if r.End.Before(r.Start) {
		return &ConfigurationError{Reason: "start date after end date"}
	}
	if r.Version < 0 {
		return &ConfigurationError{Reason: "version must not be negative"}
	}
	return nil
}

// Dates lists every date of the range in chronological order.
func (r Request) Dates() []time.Time {
	var dates []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
