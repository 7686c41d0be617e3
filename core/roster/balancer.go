package roster

import (
	"gonum.org/v1/gonum/stat"

	"github.com/rosterd/rosterd/core/logger"
	"github.com/rosterd/rosterd/core/model"
)

// balanceCategory selects the assignments counted for one fairness metric.
type balanceCategory struct {
	name  string
	match func(p placed) bool
}

func categories() []balanceCategory {
	return []balanceCategory{
		{name: "early", match: func(p placed) bool { return p.inst.Type == model.ShiftEarly }},
		{name: "middle", match: func(p placed) bool { return p.inst.Type == model.ShiftMiddle }},
		{name: "late", match: func(p placed) bool { return p.inst.Type == model.ShiftLate }},
		{name: "weekend", match: func(p placed) bool { return isWeekend(p.inst.Date) }},
	}
}

// balance improves the spread of shift types and weekend work by swapping
// assignments between the most and least loaded employees of a category.
// A swap is accepted only when every hard filter still passes for both
// employees and the category variance strictly decreases. On an already
// balanced schedule no swap is accepted, so the pass is idempotent.
func balance(r *run, cfg BalancerConfig, log logger.Logger) int {
	bound := cfg.MaxIterations
	if bound <= 0 {
		bound = 2 * len(r.snap.Employees)
	}
	cats := categories()
	accepted := 0
	for iter := 0; iter < bound; iter++ {
		improved := false
		for _, cat := range cats {
			if trySwap(r, cat) {
				accepted++
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	if accepted > 0 {
		balancerSwaps.Add(float64(accepted))
		log.Debugf("balancer: %d swaps accepted", accepted)
	}
	return accepted
}

// trySwap attempts one variance-reducing swap for the category: move a
// matching assignment from the most loaded employee to the least loaded
// one, handing one non-matching assignment back in exchange.
func trySwap(r *run, cat balanceCategory) bool {
	counts := categoryCounts(r, cat)
	high, low, ok := extremes(r, counts)
	if !ok || counts[high]-counts[low] < 2 {
		// A single-count gap cannot strictly reduce variance by a
		// one-for-one swap of category membership.
		return false
	}
	before := varianceOf(r, counts)

	for _, give := range r.byEmployee[high] {
		if !cat.match(give) {
			continue
		}
		for _, take := range r.byEmployee[low] {
			if cat.match(take) {
				continue
			}
			if !swapFeasible(r, high, give, low, take) {
				continue
			}
			r.remove(high, give)
			r.remove(low, take)
			r.add(high, take)
			r.add(low, give)
			after := varianceOf(r, categoryCounts(r, cat))
			if after < before {
				return true
			}
			// Revert: the swap did not strictly improve.
			r.remove(high, take)
			r.remove(low, give)
			r.add(high, give)
			r.add(low, take)
		}
	}
	return false
}

// swapFeasible rechecks the hard filters with both assignments taken out
// of the bookkeeping, so the exchange is judged on the resulting state.
func swapFeasible(r *run, high int, give placed, low int, take placed) bool {
	highEmp, ok := r.snap.Employee(high)
	if !ok {
		return false
	}
	lowEmp, ok := r.snap.Employee(low)
	if !ok {
		return false
	}
	r.remove(high, give)
	r.remove(low, take)
	okHigh, _ := r.canTake(highEmp, take.inst)
	okLow, _ := r.canTake(lowEmp, give.inst)
	r.add(high, give)
	r.add(low, take)
	return okHigh && okLow
}

func categoryCounts(r *run, cat balanceCategory) map[int]int {
	counts := make(map[int]int, len(r.snap.Employees))
	for _, emp := range r.snap.Employees {
		if !emp.IsActive {
			continue
		}
		n := 0
		for _, p := range r.byEmployee[emp.ID] {
			if cat.match(p) {
				n++
			}
		}
		counts[emp.ID] = n
	}
	return counts
}

// extremes returns the most and the least loaded active employees,
// breaking ties by id for determinism.
func extremes(r *run, counts map[int]int) (high, low int, ok bool) {
	first := true
	for _, emp := range r.snap.Employees {
		if !emp.IsActive {
			continue
		}
		n := counts[emp.ID]
		if first {
			high, low = emp.ID, emp.ID
			first = false
			continue
		}
		if n > counts[high] {
			high = emp.ID
		}
		if n < counts[low] {
			low = emp.ID
		}
	}
	return high, low, !first && high != low
}

func varianceOf(r *run, counts map[int]int) float64 {
	var vals []float64
	for _, emp := range r.snap.Employees {
		if !emp.IsActive {
			continue
		}
		vals = append(vals, float64(counts[emp.ID]))
	}
	if len(vals) < 2 {
		return 0
	}
	return stat.Variance(vals, nil)
}
