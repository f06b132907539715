package schedule

import (
	"iter"
	"math/rand/v2"
	"slices"
	"time"
)

// Sample-week defaults: candidate instants every half hour over the next
// eight days, each step stretched by up to half an hour of jitter.
const (
	SampleWeekHorizon = 8 * 24 * time.Hour
	SampleWeekStep    = 30 * time.Minute
	SampleWeekJitter  = 30 * time.Minute
)

// Instants returns a finite sequence of candidate instants from start
// through start+horizon, advancing by step plus a random jitter in
// [0, jitter] after each element. The sequence restarts from start every
// time it is ranged over. The step must be positive or the sequence could
// never terminate; a non-positive step panics.
func Instants(start time.Time, horizon, step, jitter time.Duration, rng *rand.Rand) iter.Seq[time.Time] {
	if step <= 0 {
		panic("schedule: instant step must be positive")
	}
	return func(yield func(time.Time) bool) {
		final := start.Add(horizon)
		for current := start; !current.After(final); {
			if !yield(current) {
				return
			}
			current = current.Add(step)
			if jitter > 0 {
				current = current.Add(time.Duration(rng.Int64N(int64(jitter) + 1)))
			}
		}
	}
}

// SampleWeekInstants returns Instants with the sample-week defaults.
func SampleWeekInstants(start time.Time, rng *rand.Rand) iter.Seq[time.Time] {
	return Instants(start, SampleWeekHorizon, SampleWeekStep, SampleWeekJitter, rng)
}

// Simulate feeds every instant to the engine and collects the picks.
// Instants that yield no action are dropped from the result.
func (w *Workout) Simulate(instants iter.Seq[time.Time]) []Action {
	var actions []Action
	for now := range instants {
		if action := w.PickActionFor(now); action != nil {
			actions = append(actions, *action)
		}
	}
	return actions
}

// SimulateDayRandomized runs Simulate and then shuffles the execution order
// within each calendar day while keeping every action's timestamp. This
// avoids always front-loading the goal exercises and ending each day with
// the catch-all picks.
func (w *Workout) SimulateDayRandomized(instants iter.Seq[time.Time]) []Action {
	picked := w.Simulate(instants)
	if len(picked) == 0 {
		return nil
	}

	var randomized []Action
	var day []Action
	current := picked[0].Time
	for _, action := range picked {
		if !sameDate(action.Time, current) {
			randomized = append(randomized, w.shuffleKeepTimes(day)...)
			current = action.Time
			day = nil
		}
		day = append(day, action)
	}
	return append(randomized, w.shuffleKeepTimes(day)...)
}

// shuffleKeepTimes permutes the actions but leaves the timestamp at each
// position untouched, so the day's schedule keeps its time-of-day shape.
func (w *Workout) shuffleKeepTimes(actions []Action) []Action {
	times := make([]time.Time, len(actions))
	for i, action := range actions {
		times[i] = action.Time
	}
	shuffled := slices.Clone(actions)
	w.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	for i := range shuffled {
		shuffled[i].Time = times[i]
	}
	return shuffled
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
