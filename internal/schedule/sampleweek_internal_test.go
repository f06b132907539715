package schedule

import (
	"math/rand/v2"
	"testing"
	"time"
)

func TestInstants_noJitter(t *testing.T) {
	start := monday
	var collected []time.Time
	for instant := range Instants(start, 2*time.Hour, 30*time.Minute, 0, testRNG()) {
		collected = append(collected, instant)
	}

	want := []time.Time{
		start,
		start.Add(30 * time.Minute),
		start.Add(time.Hour),
		start.Add(90 * time.Minute),
		start.Add(2 * time.Hour),
	}
	if len(collected) != len(want) {
		t.Fatalf("got %d instants, want %d", len(collected), len(want))
	}
	for i := range want {
		if !collected[i].Equal(want[i]) {
			t.Errorf("instant %d = %v, want %v", i, collected[i], want[i])
		}
	}
}

func TestInstants_jitterBounds(t *testing.T) {
	start := monday
	step := 30 * time.Minute
	jitter := 30 * time.Minute
	horizon := 48 * time.Hour

	var previous time.Time
	first := true
	for instant := range Instants(start, horizon, step, jitter, testRNG()) {
		if first {
			if !instant.Equal(start) {
				t.Fatalf("first instant = %v, want %v", instant, start)
			}
			first = false
		} else {
			gap := instant.Sub(previous)
			if gap < step || gap > step+jitter {
				t.Fatalf("gap %v outside [%v, %v]", gap, step, step+jitter)
			}
		}
		if instant.After(start.Add(horizon)) {
			t.Fatalf("instant %v past the horizon", instant)
		}
		previous = instant
	}
	if first {
		t.Fatal("sequence yielded no instants")
	}
}

func TestInstants_restartable(t *testing.T) {
	instants := Instants(monday, 2*time.Hour, 30*time.Minute, 0, testRNG())

	count := func() int {
		n := 0
		for range instants {
			n++
		}
		return n
	}

	firstPass := count()
	secondPass := count()
	if firstPass != secondPass {
		t.Errorf("second pass yielded %d instants, first yielded %d", secondPass, firstPass)
	}
}

func TestInstants_nonPositiveStep(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Instants() with zero step did not panic")
		}
	}()
	Instants(monday, time.Hour, 0, 0, testRNG())
}

func TestInstants_earlyBreak(t *testing.T) {
	n := 0
	for range Instants(monday, 24*time.Hour, 30*time.Minute, 0, testRNG()) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("consumed %d instants, want 3", n)
	}
}

func simulationPlan() *WorkoutPlan {
	return &WorkoutPlan{
		Name: "test",
		Exercises: []Exercise{
			{Name: "squats", MinReps: 5, MaxReps: 10, MinSets: 1, MaxSets: 2,
				MinInterval: 16 * time.Hour, MaxInterval: 48 * time.Hour,
				Goals: []GoalPeriod{{Period: 7 * 24 * time.Hour, RepsPerPeriod: 30, SetsPerPeriod: 3}}},
			{Name: "bridges", MinReps: 10, MaxReps: 10, MinSets: 1, MaxSets: 3,
				MinInterval: 16 * time.Hour, MaxInterval: 7 * 24 * time.Hour,
				Goals: []GoalPeriod{{Period: 7 * 24 * time.Hour, RepsPerPeriod: 30, SetsPerPeriod: 3}}},
			{Name: "leg marches", MinReps: 10, MaxReps: 10, MinSets: 1, MaxSets: 3,
				MinInterval: time.Hour, MaxInterval: 2 * time.Hour,
				Goals: []GoalPeriod{{Period: 7 * 24 * time.Hour, RepsPerPeriod: 30, SetsPerPeriod: 3}}},
		},
		Periods: []WorkoutPeriod{
			{Weekday: time.Monday, Start: 11 * time.Hour, End: 19 * time.Hour},
			{Weekday: time.Tuesday, Start: 11 * time.Hour, End: 19 * time.Hour},
			{Weekday: time.Wednesday, Start: 11 * time.Hour, End: 19 * time.Hour},
			{Weekday: time.Thursday, Start: 11 * time.Hour, End: 19 * time.Hour},
			{Weekday: time.Friday, Start: 11 * time.Hour, End: 19 * time.Hour},
			{Weekday: time.Saturday, Start: 13 * time.Hour, End: 21 * time.Hour},
			{Weekday: time.Sunday, Start: 13 * time.Hour, End: 18 * time.Hour},
		},
	}
}

func TestWorkout_Simulate(t *testing.T) {
	plan := simulationPlan()
	rng := rand.New(rand.NewPCG(42, 42))
	workout := NewWorkout(plan, rng)

	actions := workout.Simulate(SampleWeekInstants(monday, rng))
	if len(actions) == 0 {
		t.Fatal("Simulate() produced no actions")
	}

	for i, action := range actions {
		if !plan.InWindow(action.Time) {
			t.Errorf("action %d at %v is outside every scheduling window", i, action.Time)
		}
		if i > 0 && action.Time.Before(actions[i-1].Time) {
			t.Errorf("action %d at %v precedes action %d", i, action.Time, i-1)
		}
	}

	if got := workout.History(); len(got) != len(actions) {
		t.Errorf("History() has %d actions, Simulate() returned %d", len(got), len(actions))
	}
}

func TestWorkout_SimulateDayRandomized(t *testing.T) {
	plan := simulationPlan()
	const seed = 42

	baselineRNG := rand.New(rand.NewPCG(seed, seed))
	plain := NewWorkout(plan, baselineRNG).Simulate(SampleWeekInstants(monday, baselineRNG))

	randomizedRNG := rand.New(rand.NewPCG(seed, seed))
	randomized := NewWorkout(plan, randomizedRNG).SimulateDayRandomized(SampleWeekInstants(monday, randomizedRNG))

	if len(plain) != len(randomized) {
		t.Fatalf("randomized run has %d actions, plain run has %d", len(randomized), len(plain))
	}

	// Shuffling keeps each day's timestamps in place.
	for i := range plain {
		if !randomized[i].Time.Equal(plain[i].Time) {
			t.Errorf("action %d time = %v, want %v", i, randomized[i].Time, plain[i].Time)
		}
	}

	// Each day's workload is a permutation of the plain run's.
	type payload struct {
		exercise   string
		reps, sets int
	}
	dayCounts := func(actions []Action) map[string]map[payload]int {
		days := map[string]map[payload]int{}
		for _, action := range actions {
			day := action.Time.Format(time.DateOnly)
			if days[day] == nil {
				days[day] = map[payload]int{}
			}
			days[day][payload{action.Exercise, action.Reps, action.Sets}]++
		}
		return days
	}
	plainDays := dayCounts(plain)
	randomizedDays := dayCounts(randomized)
	if len(plainDays) != len(randomizedDays) {
		t.Fatalf("randomized run covers %d days, plain run covers %d", len(randomizedDays), len(plainDays))
	}
	for day, counts := range plainDays {
		for p, n := range counts {
			if randomizedDays[day][p] != n {
				t.Errorf("day %s: payload %+v appears %d times, want %d", day, p, randomizedDays[day][p], n)
			}
		}
	}
}

func TestWorkout_SimulateDayRandomized_empty(t *testing.T) {
	plan := simulationPlan()
	rng := rand.New(rand.NewPCG(7, 7))
	workout := NewWorkout(plan, rng)

	// A horizon entirely outside the scheduling windows yields nothing.
	start := monday.Add(2 * time.Hour)
	actions := workout.SimulateDayRandomized(Instants(start, 4*time.Hour, 30*time.Minute, 0, rng))
	if len(actions) != 0 {
		t.Errorf("got %d actions, want none outside the windows", len(actions))
	}
}
