package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gnu-lorien/workoutdistributor/internal/sqlite"
)

// sqlitePlanRepository loads and stores workout plans.
type sqlitePlanRepository struct {
	baseRepository
}

func newSQLitePlanRepository(db *sqlite.Database, logger *slog.Logger) *sqlitePlanRepository {
	return &sqlitePlanRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves a fully resolved plan by name: its exercises with their goal
// periods plus the plan's scheduling periods.
func (r *sqlitePlanRepository) Get(ctx context.Context, name string) (WorkoutPlan, error) {
	var planID int64
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id FROM workout_plans WHERE name = ?`, name).Scan(&planID)
	if errors.Is(err, sql.ErrNoRows) {
		return WorkoutPlan{}, ErrNotFound
	}
	if err != nil {
		return WorkoutPlan{}, fmt.Errorf("query plan %q: %w", name, err)
	}

	plan := WorkoutPlan{
		Name:      name,
		Exercises: nil,
		Periods:   nil,
	}

	if plan.Exercises, err = r.loadExercises(ctx, planID); err != nil {
		return WorkoutPlan{}, fmt.Errorf("load exercises for plan %q: %w", name, err)
	}
	if plan.Periods, err = r.loadPeriods(ctx, planID); err != nil {
		return WorkoutPlan{}, fmt.Errorf("load periods for plan %q: %w", name, err)
	}

	return plan, nil
}

// Save stores the plan, replacing the exercises and periods of any existing
// plan with the same name. The plan row itself is upserted so its id, and
// with it the recorded action log, survives a re-save. Exercises are
// upserted by name so other plans referencing them keep working.
func (r *sqlitePlanRepository) Save(ctx context.Context, plan WorkoutPlan) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO workout_plans (name) VALUES (?)
		ON CONFLICT (name) DO NOTHING`, plan.Name); err != nil {
		return fmt.Errorf("upsert plan %q: %w", plan.Name, err)
	}
	var planID int64
	if err = tx.QueryRowContext(ctx, `
		SELECT id FROM workout_plans WHERE name = ?`, plan.Name).Scan(&planID); err != nil {
		return fmt.Errorf("query plan id: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM plan_exercises WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("unlink exercises: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM workout_periods WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("delete periods: %w", err)
	}

	for _, ex := range plan.Exercises {
		if err = r.saveExercise(ctx, tx, planID, ex); err != nil {
			return fmt.Errorf("save exercise %q: %w", ex.Name, err)
		}
	}

	for _, period := range plan.Periods {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO workout_periods (plan_id, day_of_week, start_seconds, end_seconds)
			VALUES (?, ?, ?, ?)`,
			planID, int(period.Weekday), int64(period.Start.Seconds()), int64(period.End.Seconds())); err != nil {
			return fmt.Errorf("insert period: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// saveExercise upserts the exercise by name, rewrites its goal periods, and
// links it to the plan.
func (r *sqlitePlanRepository) saveExercise(ctx context.Context, tx *sql.Tx, planID int64, ex Exercise) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO exercises (
			name, description, rep_description,
			min_reps, max_reps, min_sets, max_sets,
			min_interval_seconds, max_interval_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			description = excluded.description,
			rep_description = excluded.rep_description,
			min_reps = excluded.min_reps,
			max_reps = excluded.max_reps,
			min_sets = excluded.min_sets,
			max_sets = excluded.max_sets,
			min_interval_seconds = excluded.min_interval_seconds,
			max_interval_seconds = excluded.max_interval_seconds`,
		ex.Name, ex.Description, ex.RepDescription,
		ex.MinReps, ex.MaxReps, ex.MinSets, ex.MaxSets,
		int64(ex.MinInterval.Seconds()), int64(ex.MaxInterval.Seconds()))
	if err != nil {
		return fmt.Errorf("upsert exercise: %w", err)
	}

	var exerciseID int64
	if err = tx.QueryRowContext(ctx, `
		SELECT id FROM exercises WHERE name = ?`, ex.Name).Scan(&exerciseID); err != nil {
		return fmt.Errorf("query exercise id: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM goal_periods WHERE exercise_id = ?`, exerciseID); err != nil {
		return fmt.Errorf("delete goal periods: %w", err)
	}
	for _, goal := range ex.Goals {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO goal_periods (exercise_id, period_seconds, reps_per_period, sets_per_period)
			VALUES (?, ?, ?, ?)`,
			exerciseID, int64(goal.Period.Seconds()), goal.RepsPerPeriod, goal.SetsPerPeriod); err != nil {
			return fmt.Errorf("insert goal period: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO plan_exercises (plan_id, exercise_id) VALUES (?, ?)`,
		planID, exerciseID); err != nil {
		return fmt.Errorf("link exercise to plan: %w", err)
	}

	return nil
}

func (r *sqlitePlanRepository) loadExercises(ctx context.Context, planID int64) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.id, e.name, e.description, e.rep_description,
		       e.min_reps, e.max_reps, e.min_sets, e.max_sets,
		       e.min_interval_seconds, e.max_interval_seconds
		FROM exercises e
		JOIN plan_exercises pe ON pe.exercise_id = e.id
		WHERE pe.plan_id = ?
		ORDER BY e.id`, planID)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	var ids []int64
	for rows.Next() {
		var (
			id                             int64
			ex                             Exercise
			minIntervalSec, maxIntervalSec int64
		)
		if err = rows.Scan(
			&id, &ex.Name, &ex.Description, &ex.RepDescription,
			&ex.MinReps, &ex.MaxReps, &ex.MinSets, &ex.MaxSets,
			&minIntervalSec, &maxIntervalSec); err != nil {
			return nil, fmt.Errorf("scan exercise row: %w", err)
		}
		ex.MinInterval = time.Duration(minIntervalSec) * time.Second
		ex.MaxInterval = time.Duration(maxIntervalSec) * time.Second
		exercises = append(exercises, ex)
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i, id := range ids {
		if exercises[i].Goals, err = r.loadGoalPeriods(ctx, id); err != nil {
			return nil, fmt.Errorf("load goal periods for exercise %q: %w", exercises[i].Name, err)
		}
	}

	return exercises, nil
}

func (r *sqlitePlanRepository) loadGoalPeriods(ctx context.Context, exerciseID int64) (_ []GoalPeriod, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT period_seconds, reps_per_period, sets_per_period
		FROM goal_periods
		WHERE exercise_id = ?
		ORDER BY id`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query goal periods: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var goals []GoalPeriod
	for rows.Next() {
		var (
			goal      GoalPeriod
			periodSec int64
		)
		if err = rows.Scan(&periodSec, &goal.RepsPerPeriod, &goal.SetsPerPeriod); err != nil {
			return nil, fmt.Errorf("scan goal period row: %w", err)
		}
		goal.Period = time.Duration(periodSec) * time.Second
		goals = append(goals, goal)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return goals, nil
}

func (r *sqlitePlanRepository) loadPeriods(ctx context.Context, planID int64) (_ []WorkoutPeriod, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT day_of_week, start_seconds, end_seconds
		FROM workout_periods
		WHERE plan_id = ?
		ORDER BY id`, planID)
	if err != nil {
		return nil, fmt.Errorf("query workout periods: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var periods []WorkoutPeriod
	for rows.Next() {
		var (
			day              int
			startSec, endSec int64
		)
		if err = rows.Scan(&day, &startSec, &endSec); err != nil {
			return nil, fmt.Errorf("scan workout period row: %w", err)
		}
		periods = append(periods, WorkoutPeriod{
			Weekday: time.Weekday(day),
			Start:   time.Duration(startSec) * time.Second,
			End:     time.Duration(endSec) * time.Second,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return periods, nil
}
