// Package models defines the persisted records of lorasched's run journal.
package models

import (
	"strings"
	"time"
)

// Run is a recorded plan resolution for one sampling run.
type Run struct {
	// ID is the unique identifier for the run.
	ID string `json:"id"`

	// Stack is the stack name the plans were built from.
	Stack string `json:"stack"`

	// TotalSteps is the step count the plans were resolved for.
	TotalSteps int `json:"total_steps"`

	// Adapters holds each adapter's resolved plan in binding order.
	Adapters []RunAdapter `json:"adapters"`

	// Warnings lists truncation warnings raised during resolution.
	Warnings []RunWarning `json:"warnings,omitempty"`

	// CreatedAt is when the run was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// RunAdapter is one adapter's plan within a run.
type RunAdapter struct {
	AdapterID    string    `json:"adapter_id"`
	Channels     string    `json:"channels"`
	Schedule     string    `json:"schedule"`
	ClipStrength float64   `json:"clip_strength"`
	Plan         []float64 `json:"plan"`
}

// RunWarning is a truncation warning attributed to an adapter.
type RunWarning struct {
	AdapterID       string `json:"adapter_id"`
	DeclaredSteps   int    `json:"declared_steps"`
	DroppedSegments int    `json:"dropped_segments"`
}

// Validate checks if the run is valid.
func (r *Run) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(r.Stack) == "" {
		validation.AddMessage("stack", "stack is required")
	}
	if r.TotalSteps <= 0 {
		validation.AddMessage("total_steps", "total_steps must be greater than 0")
	}
	if len(r.Adapters) == 0 {
		validation.AddMessage("adapters", "at least one adapter is required")
	}
	for _, a := range r.Adapters {
		if strings.TrimSpace(a.AdapterID) == "" {
			validation.AddMessage("adapters", "adapter_id is required")
			continue
		}
		if len(a.Plan) != r.TotalSteps {
			validation.AddMessage("adapters", "plan length for "+a.AdapterID+" does not match total_steps")
		}
	}
	return validation.Err()
}
