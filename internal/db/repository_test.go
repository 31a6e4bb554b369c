package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/opencode-ai/lorasched/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func sampleRun(stack string) *models.Run {
	return &models.Run{
		Stack:      stack,
		TotalSteps: 4,
		Adapters: []models.RunAdapter{
			{AdapterID: "style", Channels: "positive,negative", Schedule: "2 : 0.8\n3 : 0.4\n9 : 0", ClipStrength: 0.8, Plan: []float64{.8, .8, .4, .4}},
		},
		Warnings: []models.RunWarning{{AdapterID: "style", DeclaredSteps: 14, DroppedSegments: 1}},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := setupTestDB(t)
	require.NoError(t, database.Migrate(context.Background()))
}

func TestRunRepository_CreateAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := NewRunRepository(database)
	ctx := context.Background()

	run := sampleRun("style-character")
	require.NoError(t, repo.Create(ctx, run))
	require.NotEmpty(t, run.ID)
	require.False(t, run.CreatedAt.IsZero())

	got, err := repo.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Stack, got.Stack)
	assert.Equal(t, run.TotalSteps, got.TotalSteps)
	assert.Equal(t, run.Adapters, got.Adapters)
	assert.Equal(t, run.Warnings, got.Warnings)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunRepository_RejectsInvalidRun(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	run := sampleRun("style-character")
	run.Adapters[0].Plan = []float64{1}
	assert.Error(t, repo.Create(context.Background(), run))
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	database := setupTestDB(t)
	repo := NewRunRepository(database)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, stack := range []string{"a", "b", "a"} {
		run := sampleRun(stack)
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, run))
	}

	all, err := repo.List(ctx, RunQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	stack := "a"
	filtered, err := repo.List(ctx, RunQuery{Stack: &stack, Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.True(t, base.Add(2*time.Minute).Equal(filtered[0].CreatedAt))
}

func TestEventRepository_CreateAndList(t *testing.T) {
	database := setupTestDB(t)
	repo := NewEventRepository(database)
	ctx := context.Background()

	payload, err := json.Marshal(models.ScheduleTruncatedPayload{RunID: "run-1", AdapterID: "style", DeclaredSteps: 14, TotalSteps: 4, DroppedSegments: 1})
	require.NoError(t, err)

	event := &models.Event{
		Type:       models.EventTypeScheduleTruncated,
		EntityType: models.EntityTypeRun,
		EntityID:   "run-1",
		Payload:    payload,
		Metadata:   map[string]string{"stack": "style-character"},
	}
	require.NoError(t, repo.Create(ctx, event))
	require.NoError(t, repo.Create(ctx, &models.Event{Type: models.EventTypeRunPlanned, EntityType: models.EntityTypeRun, EntityID: "run-2"}))

	got, err := repo.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeScheduleTruncated, got.Type)
	assert.JSONEq(t, string(payload), string(got.Payload))
	assert.Equal(t, "style-character", got.Metadata["stack"])

	events, err := repo.ListByEntity(ctx, models.EntityTypeRun, "run-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	planned := models.EventTypeRunPlanned
	events, err = repo.List(ctx, EventQuery{Type: &planned})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "run-2", events[0].EntityID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	assert.Error(t, repo.Create(ctx, &models.Event{}))
}

func TestOpenCreatesFile(t *testing.T) {
	path := t.TempDir() + "/nested/history.db"
	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Migrate(context.Background()))
}
