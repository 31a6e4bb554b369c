package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the system.
type EventType string

const (
	// Run events
	EventTypeRunPlanned EventType = "run.planned"
	EventTypeRunFailed  EventType = "run.failed"

	// Schedule events
	EventTypeScheduleTruncated EventType = "schedule.truncated"
	EventTypeScheduleInvalid   EventType = "schedule.invalid"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeRun      EntityType = "run"
	EntityTypeAdapter  EntityType = "adapter"
	EntityTypeStack    EntityType = "stack"
	EntityTypeSchedule EntityType = "schedule"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// RunPlannedPayload is the payload for run.planned events.
type RunPlannedPayload struct {
	RunID      string   `json:"run_id"`
	Stack      string   `json:"stack"`
	TotalSteps int      `json:"total_steps"`
	Adapters   []string `json:"adapters"`
}

// RunFailedPayload is the payload for run.failed events.
type RunFailedPayload struct {
	Stack      string `json:"stack"`
	TotalSteps int    `json:"total_steps"`
	AdapterID  string `json:"adapter_id,omitempty"`
	Error      string `json:"error"`
}

// ScheduleTruncatedPayload is the payload for schedule.truncated events.
type ScheduleTruncatedPayload struct {
	RunID            string `json:"run_id"`
	AdapterID        string `json:"adapter_id"`
	DeclaredSteps    int    `json:"declared_steps"`
	TotalSteps       int    `json:"total_steps"`
	TruncatedSegment int    `json:"truncated_segment,omitempty"`
	DroppedSegments  int    `json:"dropped_segments"`
}

// ScheduleInvalidPayload is the payload for schedule.invalid events.
type ScheduleInvalidPayload struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
