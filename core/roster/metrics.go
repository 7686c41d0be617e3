package roster

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal          *prometheus.CounterVec
	assignmentsCreated prometheus.Counter
	coverageShortfalls prometheus.Counter
	balancerSwaps      prometheus.Counter
	generationSeconds  prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Histogram) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_runs_total",
			Help: "Number of schedule generation runs by outcome",
		},
		[]string{"status"},
	)
	asg := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_assignments_created_total",
			Help: "Number of assignments produced across all runs",
		},
	)
	short := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_coverage_shortfalls_total",
			Help: "Number of shift slots left below the staffing minimum",
		},
	)
	swaps := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_balancer_swaps_total",
			Help: "Number of swaps accepted by the distribution balancer",
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roster_generation_duration_seconds",
			Help:    "Wall clock duration of a generation run",
			Buckets: prometheus.DefBuckets,
		},
	)
	return runs, asg, short, swaps, dur
}

func init() {
	runsTotal, assignmentsCreated, coverageShortfalls, balancerSwaps, generationSeconds = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers generation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runsTotal, assignmentsCreated, coverageShortfalls, balancerSwaps, generationSeconds)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runsTotal, assignmentsCreated, coverageShortfalls, balancerSwaps, generationSeconds = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
