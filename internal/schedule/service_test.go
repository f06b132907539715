package schedule_test

import (
	"testing"
	"time"

	"github.com/gnu-lorien/workoutdistributor/internal/errors"
	"github.com/gnu-lorien/workoutdistributor/internal/schedule"
	"github.com/gnu-lorien/workoutdistributor/internal/sqlite"
	"github.com/gnu-lorien/workoutdistributor/internal/testhelpers"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newTestService(t *testing.T) *schedule.Service {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return schedule.NewService(db, logger)
}

func TestService_Plan_fixtures(t *testing.T) {
	t.Parallel()
	service := newTestService(t)
	ctx := t.Context()

	plan, err := service.Plan(ctx, "Andrew's Workout Plan")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if got, want := len(plan.Exercises), 8; got != want {
		t.Errorf("plan has %d exercises, want %d", got, want)
	}
	if got, want := len(plan.Periods), 7; got != want {
		t.Errorf("plan has %d periods, want %d", got, want)
	}

	var squats *schedule.Exercise
	for i := range plan.Exercises {
		if plan.Exercises[i].Name == "squats" {
			squats = &plan.Exercises[i]
			break
		}
	}
	if squats == nil {
		t.Fatal("fixture plan is missing the squats exercise")
	}
	if squats.MinReps != 5 || squats.MaxReps != 10 || squats.MinSets != 1 || squats.MaxSets != 2 {
		t.Errorf("squats rep/set ranges = %d-%d/%d-%d, want 5-10/1-2",
			squats.MinReps, squats.MaxReps, squats.MinSets, squats.MaxSets)
	}
	if squats.MinInterval != 16*time.Hour || squats.MaxInterval != 48*time.Hour {
		t.Errorf("squats intervals = %v/%v, want 16h/48h", squats.MinInterval, squats.MaxInterval)
	}
	wantGoals := []schedule.GoalPeriod{{Period: 7 * 24 * time.Hour, RepsPerPeriod: 30, SetsPerPeriod: 3}}
	if diff := cmp.Diff(wantGoals, squats.Goals); diff != "" {
		t.Errorf("squats goals mismatch (-want +got):\n%s", diff)
	}
}

func TestService_Plan_notFound(t *testing.T) {
	t.Parallel()
	service := newTestService(t)

	_, err := service.Plan(t.Context(), "no such plan")
	if !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("Plan() error = %v, want ErrNotFound", err)
	}
}

func TestService_SavePlan_roundTrip(t *testing.T) {
	t.Parallel()
	service := newTestService(t)
	ctx := t.Context()

	plan := schedule.WorkoutPlan{
		Name: "Recovery Plan",
		Exercises: []schedule.Exercise{
			{
				Name:           "wall sits",
				Description:    "Hold a seated position against a wall.",
				RepDescription: "holds",
				MinReps:        1,
				MaxReps:        3,
				MinSets:        1,
				MaxSets:        2,
				MinInterval:    16 * time.Hour,
				MaxInterval:    48 * time.Hour,
				Goals: []schedule.GoalPeriod{
					{Period: 7 * 24 * time.Hour, RepsPerPeriod: 10, SetsPerPeriod: 5},
				},
			},
			{
				Name:           "step ups",
				Description:    "Step onto a low box alternating legs.",
				RepDescription: "steps",
				MinReps:        10,
				MaxReps:        20,
				MinSets:        1,
				MaxSets:        3,
				MinInterval:    time.Hour,
				MaxInterval:    24 * time.Hour,
				Goals:          nil,
			},
		},
		Periods: []schedule.WorkoutPeriod{
			{Weekday: time.Tuesday, Start: 8 * time.Hour, End: 10 * time.Hour},
			{Weekday: time.Thursday, Start: 18 * time.Hour, End: 20 * time.Hour},
		},
	}

	if err := service.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan() error = %v", err)
	}

	got, err := service.Plan(ctx, "Recovery Plan")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if diff := cmp.Diff(plan, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Saving again replaces the plan instead of duplicating it.
	plan.Periods = plan.Periods[:1]
	if err = service.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan() second save error = %v", err)
	}
	if got, err = service.Plan(ctx, "Recovery Plan"); err != nil {
		t.Fatalf("Plan() after second save error = %v", err)
	}
	if diff := cmp.Diff(plan, got); diff != "" {
		t.Errorf("replacement mismatch (-want +got):\n%s", diff)
	}
}

func TestService_SavePlan_keepsHistory(t *testing.T) {
	t.Parallel()
	service := newTestService(t)
	ctx := t.Context()

	plan := schedule.WorkoutPlan{
		Name: "Recovery Plan",
		Exercises: []schedule.Exercise{
			{Name: "wall sits", MinReps: 1, MaxReps: 3, MinSets: 1, MaxSets: 2,
				MinInterval: 16 * time.Hour, MaxInterval: 48 * time.Hour},
		},
		Periods: []schedule.WorkoutPeriod{
			{Weekday: time.Tuesday, Start: 8 * time.Hour, End: 10 * time.Hour},
		},
	}
	if err := service.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan() error = %v", err)
	}

	action := schedule.Action{
		ID:       uuid.New(),
		Time:     time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		Exercise: "wall sits",
		Reps:     2,
		Sets:     1,
	}
	if err := service.RecordActions(ctx, plan.Name, []schedule.Action{action}); err != nil {
		t.Fatalf("RecordActions() error = %v", err)
	}

	// Re-saving the plan replaces its exercises and periods but must not
	// touch the recorded history.
	plan.Exercises[0].MaxReps = 5
	if err := service.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan() re-save error = %v", err)
	}

	history, err := service.History(ctx, plan.Name, time.Time{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if diff := cmp.Diff([]schedule.Action{action}, history); diff != "" {
		t.Errorf("history after plan re-save mismatch (-want +got):\n%s", diff)
	}
}

func TestService_RecordActions(t *testing.T) {
	t.Parallel()
	service := newTestService(t)
	ctx := t.Context()
	planName := "Andrew's Workout Plan"

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	actions := []schedule.Action{
		{ID: uuid.New(), Time: base, Exercise: "squats", Reps: 7, Sets: 2},
		{ID: uuid.New(), Time: base.Add(17 * time.Hour), Exercise: "Bridges", Reps: 10, Sets: 3},
	}

	if err := service.RecordActions(ctx, planName, actions); err != nil {
		t.Fatalf("RecordActions() error = %v", err)
	}

	history, err := service.History(ctx, planName, time.Time{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if diff := cmp.Diff(actions, history); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	// since filters out earlier actions.
	recent, err := service.History(ctx, planName, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("History() with since error = %v", err)
	}
	if len(recent) != 1 || recent[0].Exercise != "Bridges" {
		t.Errorf("History() with since = %v, want only the later action", recent)
	}
}

func TestService_RecordActions_unknownPlan(t *testing.T) {
	t.Parallel()
	service := newTestService(t)

	err := service.RecordActions(t.Context(), "no such plan", []schedule.Action{
		{ID: uuid.New(), Time: time.Now(), Exercise: "squats", Reps: 1, Sets: 1},
	})
	if !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("RecordActions() error = %v, want ErrNotFound", err)
	}
}

func TestService_SampleWeek(t *testing.T) {
	t.Parallel()
	service := newTestService(t)
	ctx := t.Context()
	planName := "Andrew's Workout Plan"

	// A Monday at noon, inside the weekday scheduling window.
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	actions, err := service.SampleWeek(ctx, planName, schedule.SimulationOptions{
		Start: start,
		Seed:  42,
	})
	if err != nil {
		t.Fatalf("SampleWeek() error = %v", err)
	}
	if len(actions) == 0 {
		t.Fatal("SampleWeek() produced no actions")
	}

	plan, err := service.Plan(ctx, planName)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	known := make(map[string]bool, len(plan.Exercises))
	for _, ex := range plan.Exercises {
		known[ex.Name] = true
	}
	for i, action := range actions {
		if !known[action.Exercise] {
			t.Errorf("action %d references unknown exercise %q", i, action.Exercise)
		}
		if action.Time.Before(start) || action.Time.After(start.Add(schedule.SampleWeekHorizon)) {
			t.Errorf("action %d at %v is outside the simulated horizon", i, action.Time)
		}
	}

	// The simulated actions are persisted.
	history, err := service.History(ctx, planName, time.Time{})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != len(actions) {
		t.Errorf("persisted %d actions, want %d", len(history), len(actions))
	}

	// The same seed replays the same schedule.
	replay, err := service.SampleWeek(ctx, planName, schedule.SimulationOptions{
		Start: start,
		Seed:  42,
	})
	if err != nil {
		t.Fatalf("SampleWeek() replay error = %v", err)
	}
	if len(replay) != len(actions) {
		t.Fatalf("replay produced %d actions, want %d", len(replay), len(actions))
	}
	for i := range actions {
		if replay[i].Exercise != actions[i].Exercise ||
			replay[i].Reps != actions[i].Reps ||
			replay[i].Sets != actions[i].Sets ||
			!replay[i].Time.Equal(actions[i].Time) {
			t.Errorf("replay action %d = %+v, want %+v", i, replay[i], actions[i])
		}
	}
}
