package roster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/rosterd/rosterd/core/events"
	"github.com/rosterd/rosterd/core/logger"
	coremetrics "github.com/rosterd/rosterd/core/metrics"
	"github.com/rosterd/rosterd/core/model"
	"github.com/rosterd/rosterd/internal/eventbus"
)

// Generator runs the schedule generation pipeline: snapshot, coverage,
// expansion, assignment, balancing and validation. One Generate call is
// single threaded and deterministic for identical inputs.
type Generator struct {
	cfg  Config
	log  logger.Logger
	bus  eventbus.EventBus
	sink coremetrics.MetricsSink
}

// NewGenerator creates a generator. The bus and sink may be nil; the
// logger is required.
func NewGenerator(cfg Config, log logger.Logger, bus eventbus.EventBus, sink coremetrics.MetricsSink) (*Generator, error) {
	if log == nil {
		return nil, fmt.Errorf("roster: nil logger provided to NewGenerator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, log: log, bus: bus, sink: sink}, nil
}

// Generate executes one run against the provider. Fatal errors return nil
// and the error; non-fatal conditions accumulate on the result. Partial
// schedules are never returned: cancellation or timeout discards all
// assignments made so far.
func (g *Generator) Generate(ctx context.Context, provider ResourceProvider, req Request) (*Result, error) {
	started := time.Now()
	runID := uuid.NewString()
	st := newRunState(runID, g.bus, g.log)

	if err := req.Validate(); err != nil {
		return nil, g.fail(st, err)
	}
	if g.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	if err := st.to(StateLoading); err != nil {
		return nil, err
	}
	snap, err := LoadSnapshot(ctx, provider, req.Start, req.End)
	if err != nil {
		return nil, g.fail(st, err)
	}
	g.log.Infof("run %s: snapshot loaded, %d employees, %d templates", runID, len(snap.Employees), len(snap.Templates))

	version := req.Version
	if version == 0 {
		version = 1
	}
	dates := req.Dates()

	if err := st.to(StateCoverage); err != nil {
		return nil, err
	}
	coverageByDate := make(map[int64][]CoverageInterval, len(dates))
	for _, date := range dates {
		intervals, err := BuildCoverage(snap, date)
		if err != nil {
			return nil, g.fail(st, err)
		}
		coverageByDate[date.Unix()] = intervals
	}

	if err := st.to(StateExpanding); err != nil {
		return nil, err
	}
	instancesByDate := make(map[int64][]ShiftInstance, len(dates))
	total := 0
	for _, date := range dates {
		instances := ExpandShifts(snap, date, coverageByDate[date.Unix()])
		orderShifts(instances)
		instancesByDate[date.Unix()] = instances
		total += len(instances)
	}
	g.log.Debugf("run %s: %d shift instances over %d dates", runID, total, len(dates))

	if err := st.to(StateAssigning); err != nil {
		return nil, err
	}
	r := newRun(snap, g.cfg)
	for _, date := range dates {
		// Cancellation is checked once per date; a cancelled run
		// returns no schedule at all.
		if err := ctx.Err(); err != nil {
			return nil, g.fail(st, fmt.Errorf("generation aborted on %s: %w", date.Format("2006-01-02"), err))
		}
		for _, inst := range instancesByDate[date.Unix()] {
			g.assignShift(r, runID, inst)
		}
	}

	if err := st.to(StateBalancing); err != nil {
		return nil, err
	}
	swaps := 0
	if g.cfg.Balancer.Enabled {
		swaps = balance(r, g.cfg.Balancer, g.log)
		g.log.Infof("run %s: balancer accepted %d swaps", runID, swaps)
	}

	assignments := g.collect(r, dates, version, req.CreateEmptySchedules)

	if err := st.to(StateValidating); err != nil {
		return nil, err
	}
	findings := NewValidator(g.cfg.Rules).Validate(snap, assignments)

	if err := st.to(StateDone); err != nil {
		return nil, err
	}
	res := &Result{
		RunID:          runID,
		Version:        version,
		Assignments:    assignments,
		Warnings:       r.warnings,
		Errors:         findings,
		FairnessScore:  fairnessScore(r),
		SwapsAccepted:  swaps,
		GeneratedAt:    started,
		GenerationTime: time.Since(started),
	}
	g.record(res)
	return res, nil
}

// Rules exposes the validation rule configuration for standalone checks.
func (g *Generator) Rules() RulesConfig { return g.cfg.Rules }

func (g *Generator) fail(st *runState, err error) error {
	if terr := st.to(StateFailed); terr != nil {
		g.log.Errorf("run %s: %v", st.runID, terr)
	}
	runsTotal.WithLabelValues("failed").Inc()
	g.log.Errorf("run %s failed: %v", st.runID, err)
	return err
}

// orderShifts sorts instances for assignment: keyholder shifts first, then
// by start time and template id.
func orderShifts(instances []ShiftInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.RequiresKeyholder != b.RequiresKeyholder {
			return a.RequiresKeyholder
		}
		if a.StartMin != b.StartMin {
			return a.StartMin < b.StartMin
		}
		return a.TemplateID < b.TemplateID
	})
}

// assignShift fills one shift from the ranked candidate pool, one slot at
// a time, until the staffing minimum is met or the pool is exhausted.
func (g *Generator) assignShift(r *run, runID string, inst ShiftInstance) {
	target := inst.MinEmployees
	if inst.MaxEmployees > 0 && target > inst.MaxEmployees {
		target = inst.MaxEmployees
	}
	assigned := 0
	hasKeyholder := false
	for assigned < target {
		pool := r.candidatesFor(inst, inst.RequiresKeyholder && !hasKeyholder)
		if len(pool) == 0 {
			break
		}
		best := pool[0]
		r.add(best.emp.ID, placed{inst: inst, start: inst.StartTime(), end: inst.EndTime()})
		if best.emp.IsKeyholder {
			hasKeyholder = true
		}
		assigned++
	}
	if assigned < inst.MinEmployees {
		missing := inst.MinEmployees - assigned
		coverageShortfalls.Inc()
		r.warnings = append(r.warnings, Warning{
			Kind:    WarningCoverageShortfall,
			Message: fmt.Sprintf("shift %d on %s: %d of %d required employees assigned", inst.TemplateID, inst.Date.Format("2006-01-02"), assigned, inst.MinEmployees),
			Date:    inst.Date,
			ShiftID: inst.TemplateID,
		})
		if g.bus != nil {
			g.bus.Publish(events.CoverageShortfallEvent{RunID: runID, Date: inst.Date, ShiftID: inst.TemplateID, Missing: missing})
		}
		g.log.Warnf("coverage shortfall: shift %d on %s missing %d", inst.TemplateID, inst.Date.Format("2006-01-02"), missing)
	}
	if inst.RequiresKeyholder && !hasKeyholder && g.cfg.EnforceKeyholder {
		r.warnings = append(r.warnings, Warning{
			Kind:    WarningKeyholderMissing,
			Message: fmt.Sprintf("shift %d on %s requires a keyholder but none was available", inst.TemplateID, inst.Date.Format("2006-01-02")),
			Date:    inst.Date,
			ShiftID: inst.TemplateID,
		})
	}
}

// collect turns the run bookkeeping into the immutable output records,
// sorted by date, shift and employee for reproducible output. Idle-day
// placeholders are derived from the post-balance state, keeping one row
// per employee and date after swaps moved assignments across dates.
func (g *Generator) collect(r *run, dates []time.Time, version int, createEmpty bool) []model.Assignment {
	var out []model.Assignment
	for employeeID, list := range r.byEmployee {
		for _, p := range list {
			shiftID := p.inst.TemplateID
			out = append(out, model.Assignment{
				Date:       p.inst.Date,
				EmployeeID: employeeID,
				ShiftID:    &shiftID,
				Status:     model.StatusDraft,
				Version:    version,
			})
		}
	}
	if createEmpty {
		for _, date := range dates {
			for _, emp := range r.snap.Employees {
				if emp.IsActive && !r.assignedOn(emp.ID, date) {
					out = append(out, model.Assignment{
						Date:       date,
						EmployeeID: emp.ID,
						Status:     model.StatusDraft,
						Version:    version,
					})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		as, bs := shiftKey(a), shiftKey(b)
		if as != bs {
			return as < bs
		}
		return a.EmployeeID < b.EmployeeID
	})
	return out
}

// shiftKey orders filled assignments before placeholders.
func shiftKey(a model.Assignment) int {
	if a.ShiftID == nil {
		return int(^uint(0) >> 1)
	}
	return *a.ShiftID
}

// fairnessScore is the percentage of how evenly assigned hours spread
// across active employees: 100 means zero deviation.
func fairnessScore(r *run) float64 {
	var hours []float64
	for _, emp := range r.snap.Employees {
		if !emp.IsActive {
			continue
		}
		var total float64
		for _, p := range r.byEmployee[emp.ID] {
			total += p.inst.DurationHours
		}
		hours = append(hours, total)
	}
	if len(hours) < 2 {
		return 100
	}
	mean, std := stat.MeanStdDev(hours, nil)
	if mean == 0 {
		return 100
	}
	score := (1 - std/mean) * 100
	if score < 0 {
		return 0
	}
	return score
}

func (g *Generator) record(res *Result) {
	runsTotal.WithLabelValues("done").Inc()
	assignmentsCreated.Add(float64(len(res.Assignments)))
	generationSeconds.Observe(res.GenerationTime.Seconds())
	if g.bus != nil {
		g.bus.Publish(events.RunCompletedEvent{
			RunID:       res.RunID,
			Version:     res.Version,
			Assignments: len(res.Assignments),
			Warnings:    len(res.Warnings),
			Errors:      len(res.Errors),
			Duration:    res.GenerationTime,
		})
	}
	if g.sink == nil {
		return
	}
	rec := coremetrics.GenerationRecord{
		RunID:         res.RunID,
		Version:       res.Version,
		Assignments:   len(res.Assignments),
		Filled:        res.Filled(),
		Warnings:      len(res.Warnings),
		Errors:        len(res.Errors),
		FairnessScore: res.FairnessScore,
		Duration:      res.GenerationTime,
		Completed:     time.Now(),
	}
	if err := g.sink.RecordGeneration(rec); err != nil {
		g.log.Errorf("metrics error: %v", err)
	}
}
