package harness

// TraceEvent records one executed step or check.
type TraceEvent struct {
	Type   string         `json:"type"` // "step" or "check"
	Action string         `json:"action"`
	Args   map[string]any `json:"args,omitempty"`
	Result map[string]any `json:"result,omitempty"`
	Seq    int64          `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step and check behaved as expected.
	Pass bool `json:"pass"`

	// Trace contains every step and check in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds the final document: its table, hash and revision.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(typ, action string, args, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   typ,
		Action: action,
		Args:   args,
		Result: result,
		Seq:    seq,
	})
}
