package harness

import (
	"github.com/roach88/novella/internal/engine"
	"github.com/roach88/novella/internal/vars"
)

// TranscriptEntry is what one flow step made the engine do.
type TranscriptEntry struct {
	Step  int      `json:"step"`
	Input string   `json:"input"`
	Calls []string `json:"calls"`
	// Error is the error code the step returned, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Transcript holds the presenter calls of each flow step, in order.
	Transcript []TranscriptEntry `json:"transcript"`

	// State is the engine snapshot after the last step.
	State engine.PlaybackState `json:"state"`

	// Variables is the variable store after the last step.
	Variables vars.Map `json:"variables"`

	// Characters lists the characters on stage after the last step, sorted.
	Characters []string `json:"characters"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []TranscriptEntry{},
		Variables:  vars.Map{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a transcript entry.
func (r *Result) AddStep(entry TranscriptEntry) {
	r.Transcript = append(r.Transcript, entry)
}
