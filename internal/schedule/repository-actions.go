package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnu-lorien/workoutdistributor/internal/sqlite"
	"github.com/google/uuid"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteActionRepository persists the action log.
type sqliteActionRepository struct {
	baseRepository
}

func newSQLiteActionRepository(db *sqlite.Database, logger *slog.Logger) *sqliteActionRepository {
	return &sqliteActionRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// CreateBatch appends actions to the log of the named plan. The whole batch
// is written in one transaction.
func (r *sqliteActionRepository) CreateBatch(ctx context.Context, planName string, actions []Action) (err error) {
	if len(actions) == 0 {
		return nil
	}

	var planID int64
	err = r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id FROM workout_plans WHERE name = ?`, planName).Scan(&planID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query plan %q: %w", planName, err)
	}

	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	for _, action := range actions {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO actions (id, plan_id, exercise_name, performed_at, reps, sets)
			VALUES (?, ?, ?, ?, ?, ?)`,
			action.ID.String(), planID, action.Exercise,
			action.Time.UTC().Format(timestampFormat), action.Reps, action.Sets); err != nil {
			return fmt.Errorf("insert action %s: %w", action.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns the actions recorded for the named plan at or after since,
// oldest first.
func (r *sqliteActionRepository) List(ctx context.Context, planName string, since time.Time) (_ []Action, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT a.id, a.exercise_name, a.performed_at, a.reps, a.sets
		FROM actions a
		JOIN workout_plans p ON p.id = a.plan_id
		WHERE p.name = ? AND a.performed_at >= ?
		ORDER BY a.performed_at, a.id`,
		planName, since.UTC().Format(timestampFormat))
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var actions []Action
	for rows.Next() {
		var (
			action         Action
			idStr, timeStr string
		)
		if err = rows.Scan(&idStr, &action.Exercise, &timeStr, &action.Reps, &action.Sets); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		if action.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse action id %q: %w", idStr, err)
		}
		if action.Time, err = time.Parse(timestampFormat, timeStr); err != nil {
			return nil, fmt.Errorf("parse action time %q: %w", timeStr, err)
		}
		actions = append(actions, action)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return actions, nil
}
