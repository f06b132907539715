package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gnu-lorien/workoutdistributor/internal/sqlite"
)

// Service handles the business logic around the selection engine: loading
// plans from the store, running simulations, and recording the action log.
type Service struct {
	repo   *repository
	logger *slog.Logger
}

// NewService creates a new scheduling service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	factory := newRepositoryFactory(db, logger)
	return &Service{
		repo:   factory.newRepository(),
		logger: logger,
	}
}

// Plan retrieves a fully resolved workout plan by name.
func (s *Service) Plan(ctx context.Context, name string) (WorkoutPlan, error) {
	plan, err := s.repo.plans.Get(ctx, name)
	if err != nil {
		return WorkoutPlan{}, fmt.Errorf("get plan %q: %w", name, err)
	}
	return plan, nil
}

// SavePlan stores a plan, replacing any previous plan with the same name.
func (s *Service) SavePlan(ctx context.Context, plan WorkoutPlan) error {
	if err := s.repo.plans.Save(ctx, plan); err != nil {
		return fmt.Errorf("save plan %q: %w", plan.Name, err)
	}
	return nil
}

// RecordActions appends actions to the named plan's action log.
func (s *Service) RecordActions(ctx context.Context, planName string, actions []Action) error {
	if err := s.repo.actions.CreateBatch(ctx, planName, actions); err != nil {
		return fmt.Errorf("record %d actions for plan %q: %w", len(actions), planName, err)
	}
	return nil
}

// History returns the actions recorded for the named plan at or after since.
func (s *Service) History(ctx context.Context, planName string, since time.Time) ([]Action, error) {
	actions, err := s.repo.actions.List(ctx, planName, since)
	if err != nil {
		return nil, fmt.Errorf("list actions for plan %q: %w", planName, err)
	}
	return actions, nil
}

// SimulationOptions parameterizes a sample-week run. Zero values fall back
// to the sample-week defaults; a zero Start means now, a zero Seed draws a
// random one.
type SimulationOptions struct {
	Start         time.Time
	Horizon       time.Duration
	Step          time.Duration
	Jitter        time.Duration
	Seed          uint64
	DayRandomized bool
}

// SampleWeek loads the named plan, simulates a fresh scheduling session
// over the configured horizon, records the resulting actions, and returns
// them in execution order.
func (s *Service) SampleWeek(ctx context.Context, planName string, opts SimulationOptions) ([]Action, error) {
	plan, err := s.repo.plans.Get(ctx, planName)
	if err != nil {
		return nil, fmt.Errorf("get plan %q: %w", planName, err)
	}

	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}
	if opts.Horizon == 0 {
		opts.Horizon = SampleWeekHorizon
	}
	if opts.Step == 0 {
		opts.Step = SampleWeekStep
	}
	if opts.Jitter == 0 {
		opts.Jitter = SampleWeekJitter
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	workout := NewWorkout(&plan, rng)
	instants := Instants(opts.Start, opts.Horizon, opts.Step, opts.Jitter, rng)

	var actions []Action
	if opts.DayRandomized {
		actions = workout.SimulateDayRandomized(instants)
	} else {
		actions = workout.Simulate(instants)
	}

	if err = s.repo.actions.CreateBatch(ctx, planName, actions); err != nil {
		return nil, fmt.Errorf("record simulated actions: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "simulated sample week",
		slog.String("plan", planName),
		slog.Uint64("seed", seed),
		slog.Int("actions", len(actions)))

	return actions, nil
}
