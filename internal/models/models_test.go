package models

import (
	"errors"
	"strings"
	"testing"
)

func TestRunValidate(t *testing.T) {
	run := &Run{
		Stack:      "style-character",
		TotalSteps: 2,
		Adapters:   []RunAdapter{{AdapterID: "style", Plan: []float64{0.8, 0.4}}},
	}
	if err := run.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	run.Adapters[0].Plan = []float64{0.8}
	run.Stack = ""
	err := run.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validation *ValidationErrors
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(validation.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(validation.Errors), err)
	}
	if !strings.Contains(err.Error(), "plan length for style") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestEventValidate(t *testing.T) {
	event := &Event{Type: EventTypeRunPlanned, EntityType: EntityTypeRun, EntityID: "run-1"}
	if err := event.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if err := (&Event{}).Validate(); err == nil {
		t.Fatal("expected error for empty event")
	}
}
