package harness

import (
	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// BatchSummary captures the counts of one engine run.
type BatchSummary struct {
	GroupsFormed int      `json:"groups_formed"`
	GroupsTotal  int      `json:"groups_total"`
	Assigned     int      `json:"assigned"`
	Comparisons  int      `json:"comparisons"`
	Skipped      []string `json:"skipped"`
	Orphans      []string `json:"orphans"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Batches summarizes each engine run in order.
	Batches []BatchSummary `json:"batches"`

	// Groups and Profiles hold the final store contents by group id.
	Groups   map[string][]record.Record `json:"groups"`
	Profiles map[string]store.Profile   `json:"profiles"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Batches:  []BatchSummary{},
		Groups:   make(map[string][]record.Record),
		Profiles: make(map[string]store.Profile),
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Totals sums the per-batch counters.
func (r *Result) Totals() (comparisons, skipped, orphans int) {
	for _, b := range r.Batches {
		comparisons += b.Comparisons
		skipped += len(b.Skipped)
		orphans += len(b.Orphans)
	}
	return comparisons, skipped, orphans
}
