package roster

import (
	"time"

	"github.com/rosterd/rosterd/core/model"
)

// Result is the output of one generation run: the best-effort schedule
// plus everything a reviewer needs to judge it. Fatal errors are returned
// separately and come without a Result.
type Result struct {
	RunID          string             `json:"run_id"`
	Version        int                `json:"version"`
	Assignments    []model.Assignment `json:"schedule"`
	Warnings       []Warning          `json:"warnings"`
	Errors         []ValidationError  `json:"errors"`
	FairnessScore  float64            `json:"fairness_score"`
	SwapsAccepted  int                `json:"swaps_accepted"`
	GeneratedAt    time.Time          `json:"generated_at"`
	GenerationTime time.Duration      `json:"generation_time"`
}

// ErrorCount returns the number of findings with error severity.
func (r *Result) ErrorCount() int {
	n := 0
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Filled returns the number of assignments carrying an actual shift.
func (r *Result) Filled() int {
	n := 0
	for _, a := range r.Assignments {
		if a.HasShift() {
			n++
		}
	}
	return n
}
