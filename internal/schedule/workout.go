// Package schedule decides which exercise a user should perform next.
//
// The core is the Workout selection engine: given a plan and an instant, it
// narrows the plan's exercises through a priority cascade (inside a
// scheduling window -> off cooldown -> unmet rolling goals -> overdue ->
// anything left) and picks uniformly at random among the survivors of the
// first non-empty tier.
package schedule

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Workout tracks one scheduling session: a borrowed plan plus the
// append-only history of actions assigned so far. It is single-owner and
// not safe for concurrent use; give each session its own Workout.
type Workout struct {
	plan    *WorkoutPlan
	rng     *rand.Rand
	actions []Action
	// lastDone caches the most recent action time per exercise so cooldown
	// and staleness checks avoid rescanning the history.
	lastDone map[string]time.Time
}

// NewWorkout starts a scheduling session for plan. The random source drives
// tie-breaking and reps/sets sampling; pass a seeded one for deterministic
// replay, or nil for an arbitrarily seeded source.
func NewWorkout(plan *WorkoutPlan, rng *rand.Rand) *Workout {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Workout{
		plan:     plan,
		rng:      rng,
		actions:  nil,
		lastDone: make(map[string]time.Time),
	}
}

// PickActionFor selects the exercise to perform at now, records it in the
// session history, and returns the recorded action. A nil result means no
// action should be scheduled at now; that is a normal outcome, not a fault.
func (w *Workout) PickActionFor(now time.Time) *Action {
	// Never schedule outside the plan's workout hours.
	if !w.plan.InWindow(now) {
		return nil
	}

	var available []*Exercise
	for i := range w.plan.Exercises {
		if ex := &w.plan.Exercises[i]; w.isAvailable(now, ex) {
			available = append(available, ex)
		}
	}
	if len(available) == 0 {
		return nil
	}

	// Exercises behind on a rolling goal come first.
	var unmet []*Exercise
	for _, ex := range available {
		if w.hasUnmetGoals(now, ex) {
			unmet = append(unmet, ex)
		}
	}
	if len(unmet) != 0 {
		return w.perform(now, unmet[w.rng.IntN(len(unmet))])
	}

	// Then exercises that have gone past their longest acceptable gap.
	var overdue []*Exercise
	for _, ex := range available {
		if w.isOverdue(now, ex) {
			overdue = append(overdue, ex)
		}
	}
	if len(overdue) != 0 {
		return w.perform(now, overdue[w.rng.IntN(len(overdue))])
	}

	return w.perform(now, available[w.rng.IntN(len(available))])
}

// History returns a copy of the actions recorded so far, in pick order.
func (w *Workout) History() []Action {
	return slices.Clone(w.actions)
}

// isAvailable reports whether the exercise is off cooldown at now. An
// exercise never performed is always available.
func (w *Workout) isAvailable(now time.Time, ex *Exercise) bool {
	last, ok := w.lastDone[ex.Name]
	if !ok {
		return true
	}
	return now.Sub(last) >= ex.MinInterval
}

// hasUnmetGoals reports whether any rolling goal of the exercise is behind
// target at now.
//
// A goal counts as unmet only when the running reps are strictly below
// target while the running sets are at or below target. The asymmetry (sets
// already past target mark the goal met even with reps short) matches the
// established scheduling behavior and is kept deliberately.
func (w *Workout) hasUnmetGoals(now time.Time, ex *Exercise) bool {
	for _, goal := range ex.Goals {
		earliest := now.Add(-goal.Period)
		runningReps := 0
		runningSets := 0
		for _, action := range w.actions {
			if action.Exercise != ex.Name || action.Time.Before(earliest) {
				continue
			}
			runningReps += action.Reps
			runningSets += action.Sets
		}
		if runningReps < goal.RepsPerPeriod && runningSets <= goal.SetsPerPeriod {
			return true
		}
	}
	return false
}

// isOverdue reports whether the exercise has not been performed within its
// longest acceptable gap. An exercise never performed is always overdue.
func (w *Workout) isOverdue(now time.Time, ex *Exercise) bool {
	last, ok := w.lastDone[ex.Name]
	if !ok {
		return true
	}
	return last.Before(now.Add(-ex.MaxInterval))
}

// perform synthesizes the action for the chosen exercise and appends it to
// the history before returning, so the very next pick already sees it.
func (w *Workout) perform(now time.Time, ex *Exercise) *Action {
	action := Action{
		ID:       uuid.New(),
		Time:     now,
		Exercise: ex.Name,
		Reps:     w.sample(ex.MinReps, ex.MaxReps),
		Sets:     w.sample(ex.MinSets, ex.MaxSets),
	}
	w.actions = append(w.actions, action)
	w.lastDone[ex.Name] = now
	return &action
}

// sample draws uniformly from [low, high]. An inverted range is a plan
// configuration defect the loader should have rejected; rand panics on it.
func (w *Workout) sample(low, high int) int {
	return low + w.rng.IntN(high-low+1)
}
