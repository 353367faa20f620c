package harness

import "fmt"

// TraceEvent records one executed operation and its observable result.
type TraceEvent struct {
	Op      string           `json:"op"`
	Args    map[string]any   `json:"args,omitempty"`
	Outcome string           `json:"outcome"` // "ok" or an error code
	Fields  map[string]any   `json:"fields,omitempty"`
	Records []map[string]any `json:"records,omitempty"`
	Value   *int64           `json:"value,omitempty"`
	Count   *int             `json:"count,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed operation, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation failures. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds the final record listing per collection touched by
	// final_state assertions.
	State map[string][]map[string]any `json:"state,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string][]map[string]any),
	}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
