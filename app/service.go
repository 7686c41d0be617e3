package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rosterd/rosterd/config"
	coremetrics "github.com/rosterd/rosterd/core/metrics"
	"github.com/rosterd/rosterd/core/roster"
	"github.com/rosterd/rosterd/infra/logger"
	"github.com/rosterd/rosterd/infra/metrics"
	"github.com/rosterd/rosterd/infra/store"
	"github.com/rosterd/rosterd/internal/eventbus"
)

// Service wires the store, the metrics sinks and the generator together.
type Service struct {
	Generator *roster.Generator
	Store     *store.SQLiteStore
	bus       eventbus.EventBus
	log       logger.Logger

	promEnabled bool
	promPort    int
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	gen, err := roster.NewGenerator(cfg.Generation, logger.New("generator"), bus, sink)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	if sink != nil {
		metrics.StartEventCollector(context.Background(), bus, sink)
	}

	return &Service{
		Generator:   gen,
		Store:       st,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Generate runs one schedule generation over the store and commits the
// result. A request without a version gets the next free one.
func (s *Service) Generate(ctx context.Context, req roster.Request) (*roster.Result, error) {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, fmt.Sprintf(":%d", s.promPort)); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if req.Version == 0 {
		v, err := s.Store.NextVersion(ctx)
		if err != nil {
			return nil, fmt.Errorf("next version: %w", err)
		}
		req.Version = v
	}
	res, err := s.Generator.Generate(ctx, s.Store, req)
	if err != nil {
		return nil, err
	}
	if err := s.Store.CommitSchedule(ctx, res.Assignments); err != nil {
		return nil, fmt.Errorf("commit schedule: %w", err)
	}
	s.log.Infof("run %s committed: version %d, %d assignments, %d warnings, %d errors",
		res.RunID, res.Version, len(res.Assignments), len(res.Warnings), len(res.Errors))
	return res, nil
}

// Validate re-checks a stored schedule version against the current
// resources without writing anything.
func (s *Service) Validate(ctx context.Context, version int, start, end time.Time) ([]roster.ValidationError, error) {
	snap, err := roster.LoadSnapshot(ctx, s.Store, start, end)
	if err != nil {
		return nil, err
	}
	assignments, err := s.Store.Assignments(ctx, version)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no assignments stored for version %d", version)
	}
	return roster.NewValidator(s.Generator.Rules()).Validate(snap, assignments), nil
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.Store.Close() }
