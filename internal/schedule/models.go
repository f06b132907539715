package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Exercise describes a single exercise available under a workout plan.
//
// The pacing fields constrain how often the exercise may be picked:
// MinInterval is the cooldown after a performance, MaxInterval is the
// longest acceptable gap before the exercise is considered overdue.
type Exercise struct {
	// Name is the short name of the exercise and identifies it within a plan.
	Name string
	// Description explains how to perform the exercise.
	Description string
	// RepDescription explains what counts as one rep.
	RepDescription string

	MinReps int
	MaxReps int
	MinSets int
	MaxSets int

	MinInterval time.Duration
	MaxInterval time.Duration

	// Goals holds the rolling targets for this exercise, evaluated independently.
	Goals []GoalPeriod
}

// GoalPeriod is a rolling target: within the trailing Period we hope to
// accumulate RepsPerPeriod reps and SetsPerPeriod sets.
type GoalPeriod struct {
	Period        time.Duration
	RepsPerPeriod int
	SetsPerPeriod int
}

// WorkoutPeriod is a weekly scheduling window on a given weekday. Start and
// End are offsets from midnight, so End may pass 24h without being clamped.
type WorkoutPeriod struct {
	Weekday time.Weekday
	Start   time.Duration
	End     time.Duration
}

// Contains reports whether now falls inside the window computed from
// midnight of now's own calendar day. Both bounds are inclusive.
func (p WorkoutPeriod) Contains(now time.Time) bool {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := midnight.Add(p.Start)
	end := midnight.Add(p.End)
	return !now.Before(start) && !now.After(end)
}

// WorkoutPlan groups the exercises a user may be assigned and the weekly
// periods during which assignments are allowed. Plans are read-only once
// loaded; the selection engine never mutates them.
type WorkoutPlan struct {
	Name      string
	Exercises []Exercise
	Periods   []WorkoutPeriod
}

// InWindow reports whether now falls inside any of the plan's periods whose
// weekday matches now's weekday.
func (p *WorkoutPlan) InWindow(now time.Time) bool {
	for _, period := range p.Periods {
		if period.Weekday == now.Weekday() && period.Contains(now) {
			return true
		}
	}
	return false
}

// Action records one assigned performance of an exercise. Actions are
// created by the selection engine and are immutable afterwards.
type Action struct {
	ID       uuid.UUID
	Time     time.Time
	Exercise string
	Reps     int
	Sets     int
}
