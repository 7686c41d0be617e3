package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/rosterd/rosterd/core/metrics"
)

// PromSink records generation results in Prometheus metrics.
type PromSink struct {
	generations *prometheus.CounterVec
	fairness    prometheus.Gauge
	filled      prometheus.Gauge
	duration    prometheus.Histogram
	shortfalls  prometheus.Counter
}

// NewPromSink registers generation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_sink_generations_total",
		Help: "Total number of recorded generation runs",
	}, []string{"version"})
	fairness := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_sink_fairness_score",
		Help: "Fairness score of the most recent generation run",
	})
	filled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_sink_filled_assignments",
		Help: "Filled assignments of the most recent generation run",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_sink_generation_seconds",
		Help:    "Duration of recorded generation runs",
		Buckets: prometheus.DefBuckets,
	})
	shortfalls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_sink_shortfalls_total",
		Help: "Coverage shortfalls observed on the event bus",
	})

	if err := reg.Register(generations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			generations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fairness); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fairness = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(filled); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			filled = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(shortfalls); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			shortfalls = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		generations: generations,
		fairness:    fairness,
		filled:      filled,
		duration:    duration,
		shortfalls:  shortfalls,
	}, nil
}

// RecordGeneration updates the counters and gauges for one finished run.
func (s *PromSink) RecordGeneration(rec coremetrics.GenerationRecord) error {
	s.generations.WithLabelValues(versionLabel(rec.Version)).Inc()
	s.fairness.Set(rec.FairnessScore)
	s.filled.Set(float64(rec.Filled))
	s.duration.Observe(rec.Duration.Seconds())
	return nil
}

// RecordShortfall counts a coverage shortfall.
func (s *PromSink) RecordShortfall(coremetrics.ShortfallRecord) error {
	s.shortfalls.Inc()
	return nil
}

func versionLabel(v int) string {
	return strconv.Itoa(v)
}
