package harness

import (
	"github.com/roach88/ctmigrate/internal/chunk"
	"github.com/roach88/ctmigrate/internal/ir"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// PlanHash is the content hash of the recorded plan.
	PlanHash string `json:"plan_hash"`

	// Chunks is the partitioned plan as read back from the store.
	Chunks []ir.Chunk `json:"chunks"`

	// Errors are the validation findings as read back from the store.
	Errors []ir.ValidationError `json:"errors"`

	// Failures describes every unmet expectation. Empty if Pass is true.
	Failures []string `json:"failures,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Chunks:   []ir.Chunk{},
		Errors:   []ir.ValidationError{},
		Failures: []string{},
	}
}

// AddFailure records an unmet expectation and marks the result as failed.
func (r *Result) AddFailure(msg string) {
	r.Failures = append(r.Failures, msg)
	r.Pass = false
}

// Actions returns the plan's actions in order.
func (r *Result) Actions() ir.ActionLog {
	return chunk.Flatten(r.Chunks)
}
