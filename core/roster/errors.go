package roster

import (
	"fmt"
	"time"
)

// ResourceLoadError indicates that required input data was missing or
// unreadable. It is fatal: the run aborts before any assignment work.
type ResourceLoadError struct {
	Resource string
	Err      error
}

func (e *ResourceLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resource load failed for %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("resource load failed for %s", e.Resource)
}

func (e *ResourceLoadError) Unwrap() error { return e.Err }

// ConfigurationError indicates an invalid request or contradictory
// configuration. It is fatal and aborts the run immediately.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// WarningKind classifies non-fatal conditions collected during a run.
type WarningKind string

const (
	WarningCoverageShortfall WarningKind = "coverage_shortfall"
	WarningKeyholderMissing  WarningKind = "keyholder_missing"
)

// Warning is a non-fatal condition attached to the result. The schedule is
// still returned.
type Warning struct {
	Kind       WarningKind `json:"type"`
	Message    string      `json:"message"`
	Date       time.Time   `json:"date,omitempty"`
	ShiftID    int         `json:"shift_id,omitempty"`
	EmployeeID int         `json:"employee_id,omitempty"`
}

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is one rule violation found in the finished schedule. It
// never blocks returning the schedule; callers decide what to do with it.
type ValidationError struct {
	Kind       string    `json:"kind"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	EmployeeID int       `json:"employee_id,omitempty"`
	Date       time.Time `json:"date,omitempty"`
}
