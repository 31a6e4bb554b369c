package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/opencode-ai/lorasched/internal/models"
)

type fakeRepo struct {
	last *models.Event
}

func (r *fakeRepo) Create(ctx context.Context, event *models.Event) error {
	r.last = event
	return nil
}

func TestLogRunPlanned(t *testing.T) {
	repo := &fakeRepo{}
	run := &models.Run{
		ID:         "run-1",
		Stack:      "style-character",
		TotalSteps: 4,
		Adapters:   []models.RunAdapter{{AdapterID: "style"}, {AdapterID: "character"}},
	}

	if err := LogRunPlanned(context.Background(), repo, run); err != nil {
		t.Fatalf("LogRunPlanned failed: %v", err)
	}
	if repo.last == nil {
		t.Fatal("expected event to be created")
	}
	if repo.last.Type != models.EventTypeRunPlanned {
		t.Fatalf("unexpected event type: %q", repo.last.Type)
	}
	if repo.last.EntityID != "run-1" {
		t.Fatalf("unexpected entity id: %q", repo.last.EntityID)
	}

	var payload models.RunPlannedPayload
	if err := json.Unmarshal(repo.last.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload.Adapters) != 2 || payload.Adapters[1] != "character" {
		t.Fatalf("unexpected adapters: %v", payload.Adapters)
	}
}

func TestLogScheduleTruncated(t *testing.T) {
	repo := &fakeRepo{}

	err := LogScheduleTruncated(context.Background(), repo, "run-1", models.ScheduleTruncatedPayload{
		AdapterID:       "style",
		DeclaredSteps:   14,
		TotalSteps:      4,
		DroppedSegments: 1,
	})
	if err != nil {
		t.Fatalf("LogScheduleTruncated failed: %v", err)
	}
	if repo.last.EntityType != models.EntityTypeRun || repo.last.EntityID != "run-1" {
		t.Fatalf("unexpected entity: %s/%s", repo.last.EntityType, repo.last.EntityID)
	}
	if repo.last.Metadata["adapter_id"] != "style" {
		t.Fatalf("expected adapter_id metadata, got %v", repo.last.Metadata)
	}

	var payload models.ScheduleTruncatedPayload
	if err := json.Unmarshal(repo.last.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.RunID != "run-1" || payload.DroppedSegments != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestLogRunFailed(t *testing.T) {
	repo := &fakeRepo{}

	if err := LogRunFailed(context.Background(), repo, "detail-fade", 0, "", errors.New("invalid total steps")); err != nil {
		t.Fatalf("LogRunFailed failed: %v", err)
	}
	if repo.last.Type != models.EventTypeRunFailed || repo.last.EntityID != "detail-fade" {
		t.Fatalf("unexpected event: %+v", repo.last)
	}
}

func TestEventHelpersRequireInputs(t *testing.T) {
	ctx := context.Background()

	if err := LogRunPlanned(ctx, nil, &models.Run{ID: "run-1"}); err == nil {
		t.Fatal("expected error for nil repository")
	}
	if err := LogRunPlanned(ctx, &fakeRepo{}, nil); err == nil {
		t.Fatal("expected error for nil run")
	}
	if err := LogScheduleTruncated(ctx, &fakeRepo{}, "run-1", models.ScheduleTruncatedPayload{}); err == nil {
		t.Fatal("expected error for missing adapter id")
	}
	if err := LogScheduleTruncated(ctx, &fakeRepo{}, "", models.ScheduleTruncatedPayload{AdapterID: "style"}); err == nil {
		t.Fatal("expected error for missing run id")
	}
	if err := LogScheduleInvalid(ctx, &fakeRepo{}, "", errors.New("bad")); err == nil {
		t.Fatal("expected error for missing path")
	}
}
