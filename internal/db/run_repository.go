package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opencode-ai/lorasched/internal/models"
)

// Run repository errors.
var (
	ErrRunNotFound = errors.New("run not found")
)

// RunRepository handles run journal persistence.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// RunQuery defines filters for listing runs.
type RunQuery struct {
	Stack *string // Filter by stack name
	Limit int     // Max results to return
}

// Create records a run.
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	return r.create(ctx, r.db, run)
}

// CreateWithTx records a run using an existing transaction.
func (r *RunRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, run *models.Run) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	return r.create(ctx, tx, run)
}

func (r *RunRepository) create(ctx context.Context, ex execer, run *models.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	} else {
		run.CreatedAt = run.CreatedAt.UTC()
	}

	adapters, err := json.Marshal(run.Adapters)
	if err != nil {
		return fmt.Errorf("failed to marshal adapters: %w", err)
	}

	var warningsJSON *string
	if len(run.Warnings) > 0 {
		data, err := json.Marshal(run.Warnings)
		if err != nil {
			return fmt.Errorf("failed to marshal warnings: %w", err)
		}
		s := string(data)
		warningsJSON = &s
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO runs (id, stack, total_steps, adapters_json, warnings_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Stack,
		run.TotalSteps,
		string(adapters),
		warningsJSON,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, stack, total_steps, adapters_json, warnings_json, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// List returns runs, newest first.
func (r *RunRepository) List(ctx context.Context, q RunQuery) ([]*models.Run, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, stack, total_steps, adapters_json, warnings_json, created_at FROM runs`
	args := []any{}
	if q.Stack != nil {
		query += ` WHERE stack = ?`
		args = append(args, *q.Stack)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var adaptersJSON, createdAt string
	var warningsJSON sql.NullString

	if err := row.Scan(&run.ID, &run.Stack, &run.TotalSteps, &adaptersJSON, &warningsJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(adaptersJSON), &run.Adapters); err != nil {
		return nil, fmt.Errorf("failed to parse adapters for run %s: %w", run.ID, err)
	}
	if warningsJSON.Valid {
		if err := json.Unmarshal([]byte(warningsJSON.String), &run.Warnings); err != nil {
			return nil, fmt.Errorf("failed to parse warnings for run %s: %w", run.ID, err)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = t
	}

	return &run, nil
}
