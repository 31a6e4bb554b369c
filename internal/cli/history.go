package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencode-ai/lorasched/internal/db"
	"github.com/opencode-ai/lorasched/internal/events"
	"github.com/opencode-ai/lorasched/internal/logging"
	"github.com/opencode-ai/lorasched/internal/models"
	"github.com/opencode-ai/lorasched/internal/schedule"
	"github.com/opencode-ai/lorasched/internal/stack"
)

// txEventRepository writes events inside an open transaction.
type txEventRepository struct {
	repo *db.EventRepository
	tx   *sql.Tx
}

func (r txEventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.repo.CreateWithTx(ctx, r.tx, event)
}

func buildRun(stackName string, set *stack.PlanSet, schedules map[string]*schedule.Schedule) *models.Run {
	run := &models.Run{
		Stack:      stackName,
		TotalSteps: set.TotalSteps(),
	}
	values := set.Values()
	for _, id := range set.IDs() {
		run.Adapters = append(run.Adapters, models.RunAdapter{
			AdapterID:    id,
			Channels:     set.Channels(id).String(),
			Schedule:     schedule.Format(schedules[id]),
			ClipStrength: set.Peak(id),
			Plan:         values[id],
		})
	}
	for _, w := range set.Warnings() {
		run.Warnings = append(run.Warnings, models.RunWarning{
			AdapterID:       w.AdapterID,
			DeclaredSteps:   w.Warning.DeclaredSteps,
			DroppedSegments: w.Warning.DroppedSegments,
		})
	}
	return run
}

// recordRun stores the run and its events in one transaction.
func recordRun(ctx context.Context, stackName string, set *stack.PlanSet, schedules map[string]*schedule.Schedule) (string, error) {
	database, err := openDatabase()
	if err != nil {
		return "", err
	}
	defer database.Close()

	return saveRun(ctx, database, buildRun(stackName, set, schedules), set.Warnings())
}

func saveRun(ctx context.Context, database *db.DB, run *models.Run, warnings []stack.AdapterWarning) (string, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.NewRunRepository(database).CreateWithTx(ctx, tx, run); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	eventRepo := txEventRepository{repo: db.NewEventRepository(database), tx: tx}
	if err := events.LogRunPlanned(ctx, eventRepo, run); err != nil {
		return "", fmt.Errorf("failed to record run event: %w", err)
	}
	for _, w := range warnings {
		err := events.LogScheduleTruncated(ctx, eventRepo, run.ID, models.ScheduleTruncatedPayload{
			AdapterID:        w.AdapterID,
			DeclaredSteps:    w.Warning.DeclaredSteps,
			TotalSteps:       w.Warning.TotalSteps,
			TruncatedSegment: w.Warning.TruncatedSegment,
			DroppedSegments:  w.Warning.DroppedSegments,
		})
		if err != nil {
			return "", fmt.Errorf("failed to record truncation event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// recordFailure journals a failed resolution. Journal errors are logged, not
// returned, so the original failure reaches the user.
func recordFailure(ctx context.Context, stackName string, steps int, cause error) {
	database, err := openDatabase()
	if err != nil {
		logger := logging.Component("history")
		logger.Warn().Err(err).Msg("failed to open history database")
		return
	}
	defer database.Close()

	var adapterID string
	var combineErr *stack.CombineError
	if errors.As(cause, &combineErr) {
		adapterID = combineErr.AdapterID
	}
	if err := events.LogRunFailed(ctx, db.NewEventRepository(database), stackName, steps, adapterID, cause); err != nil {
		logger := logging.Component("history")
		logger.Warn().Err(err).Msg("failed to record run failure")
	}
}

// recordInvalidSchedule journals a schedule file that failed to parse.
func recordInvalidSchedule(ctx context.Context, path string, cause error) {
	database, err := openDatabase()
	if err != nil {
		logger := logging.Component("history")
		logger.Warn().Err(err).Msg("failed to open history database")
		return
	}
	defer database.Close()

	if err := events.LogScheduleInvalid(ctx, db.NewEventRepository(database), path, cause); err != nil {
		logger := logging.Component("history")
		logger.Warn().Err(err).Msg("failed to record invalid schedule")
	}
}
