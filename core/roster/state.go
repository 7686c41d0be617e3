package roster

import (
	"fmt"
	"time"

	"github.com/rosterd/rosterd/core/events"
	"github.com/rosterd/rosterd/core/logger"
	"github.com/rosterd/rosterd/internal/eventbus"
)

// RunState tracks the progress of one generation run.
type RunState int

const (
	StateInit RunState = iota
	StateLoading
	StateCoverage
	StateExpanding
	StateAssigning
	StateBalancing
	StateValidating
	StateDone
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateLoading:
		return "LOADING"
	case StateCoverage:
		return "COVERAGE"
	case StateExpanding:
		return "EXPANDING"
	case StateAssigning:
		return "ASSIGNING"
	case StateBalancing:
		return "BALANCING"
	case StateValidating:
		return "VALIDATING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// Terminal reports whether no further transition is allowed.
func (s RunState) Terminal() bool { return s == StateDone || s == StateFailed }

// CanTransition reports whether the run may move from s to next. States
// advance strictly forward; FAILED is reachable from any non-terminal
// state, and terminal states are never left or re-entered.
func (s RunState) CanTransition(next RunState) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	return next == s+1 && next <= StateDone
}

// runState couples the current state with event publication so every
// transition is observable.
type runState struct {
	runID string
	state RunState
	bus   eventbus.EventBus
	log   logger.Logger
}

func newRunState(runID string, bus eventbus.EventBus, log logger.Logger) *runState {
	return &runState{runID: runID, state: StateInit, bus: bus, log: log}
}

func (r *runState) current() RunState { return r.state }

func (r *runState) to(next RunState) error {
	if !r.state.CanTransition(next) {
		return fmt.Errorf("illegal run state transition %s -> %s", r.state, next)
	}
	if r.bus != nil {
		r.bus.Publish(events.RunStateEvent{
			RunID: r.runID,
			From:  r.state.String(),
			To:    next.String(),
			At:    time.Now(),
		})
	}
	r.log.Debugf("run %s: %s -> %s", r.runID, r.state, next)
	r.state = next
	return nil
}
