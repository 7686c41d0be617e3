package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/rosterd/rosterd/core/metrics"
)

func TestPromSinkRecordsGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("NewPromSinkWithRegistry: %v", err)
	}
	rec := coremetrics.GenerationRecord{
		RunID: "r1", Version: 1, Assignments: 12, Filled: 10,
		FairnessScore: 87.5, Duration: 250 * time.Millisecond, Completed: time.Now(),
	}
	if err := sink.RecordGeneration(rec); err != nil {
		t.Fatalf("RecordGeneration: %v", err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "roster_sink_fairness_score" {
			found = true
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 87.5 {
				t.Errorf("fairness gauge %v", v)
			}
		}
	}
	if !found {
		t.Error("fairness gauge not registered")
	}
}

func TestPromSinkReregistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
