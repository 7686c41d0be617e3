package metrics

import coremetrics "github.com/rosterd/rosterd/core/metrics"

// MultiSink fanouts generation records to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordGeneration(rec coremetrics.GenerationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordShortfall forwards shortfall records when supported by the sink.
func (m *MultiSink) RecordShortfall(rec coremetrics.ShortfallRecord) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(coremetrics.ShortfallRecorder); ok {
			if err := sr.RecordShortfall(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
