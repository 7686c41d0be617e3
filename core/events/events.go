// Package events defines the run lifecycle events emitted on the event bus.
//
// Available event types:
//   - RunStateEvent: state machine transition of a generation run
//   - CoverageShortfallEvent: a staffing target could not be met
//   - RunCompletedEvent: summary of a finished run
package events

import "time"

// RunStateEvent is published on every state machine transition.
type RunStateEvent struct {
	RunID string
	From  string
	To    string
	At    time.Time
}

// CoverageShortfallEvent is published when a coverage interval's minimum
// staffing target is not met.
type CoverageShortfallEvent struct {
	RunID   string
	Date    time.Time
	ShiftID int
	Missing int
}

// RunCompletedEvent summarises a finished generation run.
type RunCompletedEvent struct {
	RunID       string
	Version     int
	Assignments int
	Warnings    int
	Errors      int
	Duration    time.Duration
}
