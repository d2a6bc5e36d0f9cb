package harness

import "github.com/roach88/recordselect/internal/ir"

// StepResult is the observed outcome of one step on one backend.
type StepResult struct {
	Name string `json:"name"`
	Op   string `json:"op"`
	Type string `json:"type"`

	// IDs are the identities of the returned records, in order.
	IDs []string `json:"ids"`

	// Records are the returned field sets, in order.
	Records []ir.IRObject `json:"records"`

	// Error is the QueryError code, empty on success.
	Error string `json:"error,omitempty"`

	// Message is the full error text. It is not part of golden snapshots
	// because resolution messages differ between backends.
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched and all backends agreed.
	Pass bool `json:"pass"`

	// Backends lists the resolvers the scenario ran against, in order.
	Backends []string `json:"backends"`

	// Steps are the results of the first backend.
	Steps []StepResult `json:"steps"`

	// Errors contains assertion and parity failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Backends: []string{},
		Steps:    []StepResult{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
