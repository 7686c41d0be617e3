package roster

import "testing"

func TestRunStateForwardOnly(t *testing.T) {
	order := []RunState{
		StateInit, StateLoading, StateCoverage, StateExpanding,
		StateAssigning, StateBalancing, StateValidating, StateDone,
	}
	for i := 0; i < len(order)-1; i++ {
		if !order[i].CanTransition(order[i+1]) {
			t.Errorf("%s -> %s should be allowed", order[i], order[i+1])
		}
	}
	if StateCoverage.CanTransition(StateLoading) {
		t.Error("states must not move backwards")
	}
	if StateLoading.CanTransition(StateAssigning) {
		t.Error("states must not skip ahead")
	}
}

func TestRunStateFailedReachableFromNonTerminal(t *testing.T) {
	for s := StateInit; s <= StateValidating; s++ {
		if !s.CanTransition(StateFailed) {
			t.Errorf("%s -> FAILED should be allowed", s)
		}
	}
	if StateDone.CanTransition(StateFailed) {
		t.Error("DONE is terminal")
	}
	if StateFailed.CanTransition(StateLoading) {
		t.Error("FAILED is terminal")
	}
}

func TestRunStatePublishesTransitions(t *testing.T) {
	st := newRunState("run-1", nil, testLogger{})
	if st.current() != StateInit {
		t.Fatalf("initial state %s", st.current())
	}
	if err := st.to(StateLoading); err != nil {
		t.Fatalf("to LOADING: %v", err)
	}
	if err := st.to(StateAssigning); err == nil {
		t.Fatal("skipping states must fail")
	}
}
