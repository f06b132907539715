package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gnu-lorien/workoutdistributor/internal/envstruct"
	"github.com/gnu-lorien/workoutdistributor/internal/errors"
	"github.com/gnu-lorien/workoutdistributor/internal/logging"
	"github.com/gnu-lorien/workoutdistributor/internal/planfile"
	"github.com/gnu-lorien/workoutdistributor/internal/schedule"
	"github.com/gnu-lorien/workoutdistributor/internal/sqlite"
)

type config struct {
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"WORKOUTDISTRIBUTOR_SQLITE_URL" envDefault:"./workoutdistributor.sqlite3"`
	// Plan is the name of the workout plan to simulate.
	Plan string `env:"WORKOUTDISTRIBUTOR_PLAN" envDefault:"Andrew's Workout Plan"`
	// PlanFile is an optional YAML file to load a plan from before simulating. It overrides Plan.
	PlanFile string `env:"WORKOUTDISTRIBUTOR_PLAN_FILE" envDefault:""`
	// Horizon is how far into the future the simulation runs.
	Horizon time.Duration `env:"WORKOUTDISTRIBUTOR_HORIZON" envDefault:"192h"`
	// Step is the base interval between simulated check-ins.
	Step time.Duration `env:"WORKOUTDISTRIBUTOR_STEP" envDefault:"30m"`
	// Jitter is the maximum random addition to each step.
	Jitter time.Duration `env:"WORKOUTDISTRIBUTOR_JITTER" envDefault:"30m"`
	// Seed seeds the random source. Zero picks a random seed.
	Seed uint64 `env:"WORKOUTDISTRIBUTOR_SEED" envDefault:"0"`
	// DayRandomize shuffles the order of exercises within each day of the printed schedule.
	DayRandomize bool `env:"WORKOUTDISTRIBUTOR_DAY_RANDOMIZE" envDefault:"true"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool), stdout io.Writer) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	service := schedule.NewService(db, logger)

	planName := cfg.Plan
	if cfg.PlanFile != "" {
		var plan schedule.WorkoutPlan
		if plan, err = planfile.Load(cfg.PlanFile); err != nil {
			return errors.Wrap(err, "load plan file", slog.String("path", cfg.PlanFile))
		}
		if err = service.SavePlan(ctx, plan); err != nil {
			return errors.Wrap(err, "save plan", slog.String("plan", plan.Name))
		}
		planName = plan.Name
	}

	actions, err := service.SampleWeek(ctx, planName, schedule.SimulationOptions{
		Horizon:       cfg.Horizon,
		Step:          cfg.Step,
		Jitter:        cfg.Jitter,
		Seed:          cfg.Seed,
		DayRandomized: cfg.DayRandomize,
	})
	if err != nil {
		return errors.Wrap(err, "simulate sample week", slog.String("plan", planName))
	}

	for _, action := range actions {
		if _, err = fmt.Fprintf(stdout, "On %s do %s for %d reps and %d sets\n",
			action.Time.Format(time.RFC1123), action.Exercise, action.Reps, action.Sets); err != nil {
			return errors.Wrap(err, "write schedule")
		}
	}

	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv, os.Stdout); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure running workout distributor", errors.SlogError(err))
		os.Exit(1)
	}
}
