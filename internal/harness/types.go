package harness

import (
	"github.com/roach88/asksort/internal/journal"
	"github.com/roach88/asksort/internal/preference"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the run behaved as asserted.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Trace is the session as recorded in the scenario's journal.
	Trace *journal.Trace `json:"-"`

	// Store is the final preference store; nil when ranking failed.
	Store *preference.Store `json:"-"`

	// Err is the ranking error, if the run failed.
	Err error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
