package harness

import (
	"github.com/roach88/qnorm/internal/ir"
	"github.com/roach88/qnorm/internal/visit"
)

// TraceFiring is one rule firing in the trace.
type TraceFiring struct {
	Rule    string `json:"rule"`
	Kind    string `json:"kind"`
	Depth   int    `json:"depth"`
	Changed bool   `json:"changed"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every expectation holds.
	Pass bool `json:"pass"`

	// PassID is the id of the normalization pass.
	PassID string `json:"pass_id"`

	// Firings lists rule firings in the order rules were chosen.
	// Empty when the pass failed.
	Firings []TraceFiring `json:"firings"`

	// Tree is the description of the normalized tree, nil on failure.
	Tree ir.IRObject `json:"tree,omitempty"`

	// Fingerprint is the hash of Tree.
	Fingerprint string `json:"fingerprint,omitempty"`

	// ErrorCode is the code of the error that aborted the pass.
	ErrorCode string `json:"error_code,omitempty"`

	// Error is the message of that error.
	Error string `json:"error,omitempty"`

	// Executions counts executions per provider.
	Executions map[string]int `json:"executions"`

	// Errors contains failed expectations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Firings:    []TraceFiring{},
		Executions: make(map[string]int),
		Errors:     []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddFirings appends engine firings to the trace.
func (r *Result) AddFirings(firings []visit.Firing) {
	for _, f := range firings {
		r.Firings = append(r.Firings, TraceFiring{
			Rule:    f.Rule,
			Kind:    f.Kind.String(),
			Depth:   f.Depth,
			Changed: f.Changed,
		})
	}
}
