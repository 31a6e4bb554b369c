// Package events provides helper functions for journaling lorasched events.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opencode-ai/lorasched/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogRunPlanned records that a run's plans were resolved and stored.
func LogRunPlanned(ctx context.Context, repo Repository, run *models.Run) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}

	adapters := make([]string, 0, len(run.Adapters))
	for _, a := range run.Adapters {
		adapters = append(adapters, a.AdapterID)
	}

	return emit(ctx, repo, models.EventTypeRunPlanned, models.EntityTypeRun, run.ID, models.RunPlannedPayload{
		RunID:      run.ID,
		Stack:      run.Stack,
		TotalSteps: run.TotalSteps,
		Adapters:   adapters,
	}, map[string]string{"stack": run.Stack})
}

// LogRunFailed records a stack that could not be resolved for a run.
func LogRunFailed(ctx context.Context, repo Repository, stack string, totalSteps int, adapterID string, cause error) error {
	if cause == nil {
		return fmt.Errorf("failure cause is required")
	}
	return emit(ctx, repo, models.EventTypeRunFailed, models.EntityTypeStack, stack, models.RunFailedPayload{
		Stack:      stack,
		TotalSteps: totalSteps,
		AdapterID:  adapterID,
		Error:      cause.Error(),
	}, nil)
}

// LogScheduleTruncated records a truncation warning for one adapter of a run.
func LogScheduleTruncated(ctx context.Context, repo Repository, runID string, payload models.ScheduleTruncatedPayload) error {
	if payload.AdapterID == "" {
		return fmt.Errorf("adapter id is required")
	}
	payload.RunID = runID
	return emit(ctx, repo, models.EventTypeScheduleTruncated, models.EntityTypeRun, runID, payload,
		map[string]string{"adapter_id": payload.AdapterID})
}

// LogScheduleInvalid records a schedule file that failed to parse.
func LogScheduleInvalid(ctx context.Context, repo Repository, path string, cause error) error {
	if cause == nil {
		return fmt.Errorf("failure cause is required")
	}
	return emit(ctx, repo, models.EventTypeScheduleInvalid, models.EntityTypeSchedule, path, models.ScheduleInvalidPayload{
		Path:  path,
		Error: cause.Error(),
	}, nil)
}

func emit(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any, metadata map[string]string) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if entityID == "" {
		return fmt.Errorf("%s: entity id is required", eventType)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
		Metadata:   metadata,
	})
}
