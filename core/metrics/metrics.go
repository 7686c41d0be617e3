package metrics

import (
	"time"
)

// GenerationRecord summarizes one finished schedule generation run.
type GenerationRecord struct {
	RunID         string
	Version       int
	Assignments   int
	Filled        int
	Warnings      int
	Errors        int
	FairnessScore float64
	Duration      time.Duration
	Completed     time.Time
}

// MetricsSink records generation results for observability purposes.
type MetricsSink interface {
	RecordGeneration(rec GenerationRecord) error
}

// ShortfallRecord is one shift slot left below its staffing minimum.
type ShortfallRecord struct {
	RunID   string
	Date    time.Time
	ShiftID int
	Missing int
	Time    time.Time
}

// ShortfallRecorder is implemented by sinks able to record coverage
// shortfalls individually.
type ShortfallRecorder interface {
	RecordShortfall(rec ShortfallRecord) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationRecord) error { return nil }

// Ensure NopSink implements ShortfallRecorder.
func (NopSink) RecordShortfall(ShortfallRecord) error { return nil }
