// Package agent defines the boundary to the external LLM-driven browser
// agent runtime. The runtime is consumed through its run/observe contract
// only; everything it produces is treated as untrusted input for the
// result recovery pipeline.
package agent

import "context"

// Runner executes a compiled task prompt against a live browser session.
type Runner interface {
	Run(ctx context.Context, task string) (*History, error)
}

// StepResult is the observable output of a single agent step.
type StepResult struct {
	ExtractedContent string `json:"extracted_content,omitempty"`
	Error            string `json:"error,omitempty"`
}

// History is a snapshot of one agent run. It is immutable once returned,
// which keeps the recovery pipeline deterministic and testable without
// a live runtime.
type History struct {
	// Output is the directly-typed structured output, when the runtime
	// produced one. Raw JSON so callers decode into their own schema.
	Output []byte

	// FinalText is the agent's final free-text result, if any.
	FinalText string

	// Steps are the per-step action outputs in execution order.
	Steps []StepResult

	// Done reports whether the run was marked complete by the runtime.
	Done bool

	// RunErrors are the errors recorded during the run, in order.
	RunErrors []string
}

// FinalResult returns the agent's final free-text result, or "".
func (h *History) FinalResult() string {
	if h == nil {
		return ""
	}
	return h.FinalText
}

// ActionResults returns the per-step action outputs.
func (h *History) ActionResults() []StepResult {
	if h == nil {
		return nil
	}
	return h.Steps
}

// IsDone reports whether the run completed.
func (h *History) IsDone() bool {
	return h != nil && h.Done
}

// Errors returns the recorded run errors.
func (h *History) Errors() []string {
	if h == nil {
		return nil
	}
	return h.RunErrors
}
