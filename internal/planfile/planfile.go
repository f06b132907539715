// Package planfile loads workout plans from YAML files.
package planfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gnu-lorien/workoutdistributor/internal/schedule"
	"gopkg.in/yaml.v3"
)

type planDocument struct {
	Name      string             `yaml:"name"`
	Exercises []exerciseDocument `yaml:"exercises"`
	Periods   []periodDocument   `yaml:"periods"`
}

type exerciseDocument struct {
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description"`
	RepDescription string         `yaml:"rep_description"`
	MinReps        int            `yaml:"min_reps"`
	MaxReps        int            `yaml:"max_reps"`
	MinSets        int            `yaml:"min_sets"`
	MaxSets        int            `yaml:"max_sets"`
	MinInterval    string         `yaml:"min_interval"`
	MaxInterval    string         `yaml:"max_interval"`
	Goals          []goalDocument `yaml:"goals"`
}

type goalDocument struct {
	Period string `yaml:"period"`
	Reps   int    `yaml:"reps"`
	Sets   int    `yaml:"sets"`
}

type periodDocument struct {
	Weekday string `yaml:"weekday"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load reads and validates a workout plan from the YAML file at path.
func Load(path string) (schedule.WorkoutPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schedule.WorkoutPlan{}, fmt.Errorf("read plan file: %w", err)
	}
	plan, err := Parse(data)
	if err != nil {
		return schedule.WorkoutPlan{}, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	return plan, nil
}

// Parse decodes and validates a workout plan from YAML.
func Parse(data []byte) (schedule.WorkoutPlan, error) {
	var doc planDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return schedule.WorkoutPlan{}, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if doc.Name == "" {
		return schedule.WorkoutPlan{}, fmt.Errorf("plan name must not be empty")
	}

	plan := schedule.WorkoutPlan{
		Name:      doc.Name,
		Exercises: make([]schedule.Exercise, 0, len(doc.Exercises)),
		Periods:   make([]schedule.WorkoutPeriod, 0, len(doc.Periods)),
	}

	seen := make(map[string]bool, len(doc.Exercises))
	for _, exDoc := range doc.Exercises {
		ex, err := parseExercise(exDoc)
		if err != nil {
			return schedule.WorkoutPlan{}, fmt.Errorf("exercise %q: %w", exDoc.Name, err)
		}
		if seen[ex.Name] {
			return schedule.WorkoutPlan{}, fmt.Errorf("duplicate exercise name %q", ex.Name)
		}
		seen[ex.Name] = true
		plan.Exercises = append(plan.Exercises, ex)
	}

	for i, periodDoc := range doc.Periods {
		period, err := parsePeriod(periodDoc)
		if err != nil {
			return schedule.WorkoutPlan{}, fmt.Errorf("period %d: %w", i, err)
		}
		plan.Periods = append(plan.Periods, period)
	}

	return plan, nil
}

func parseExercise(doc exerciseDocument) (schedule.Exercise, error) {
	var (
		ex  schedule.Exercise
		err error
	)

	if doc.Name == "" {
		return ex, fmt.Errorf("name must not be empty")
	}
	if doc.MinReps < 0 || doc.MinReps > doc.MaxReps {
		return ex, fmt.Errorf("rep range %d-%d is invalid", doc.MinReps, doc.MaxReps)
	}
	if doc.MinSets < 0 || doc.MinSets > doc.MaxSets {
		return ex, fmt.Errorf("set range %d-%d is invalid", doc.MinSets, doc.MaxSets)
	}

	ex.Name = doc.Name
	ex.Description = doc.Description
	ex.RepDescription = doc.RepDescription
	ex.MinReps = doc.MinReps
	ex.MaxReps = doc.MaxReps
	ex.MinSets = doc.MinSets
	ex.MaxSets = doc.MaxSets

	if ex.MinInterval, err = time.ParseDuration(doc.MinInterval); err != nil {
		return ex, fmt.Errorf("min_interval: %w", err)
	}
	if ex.MaxInterval, err = time.ParseDuration(doc.MaxInterval); err != nil {
		return ex, fmt.Errorf("max_interval: %w", err)
	}
	if ex.MinInterval > ex.MaxInterval {
		return ex, fmt.Errorf("min_interval %s exceeds max_interval %s", ex.MinInterval, ex.MaxInterval)
	}

	for i, goalDoc := range doc.Goals {
		var goal schedule.GoalPeriod
		if goal.Period, err = time.ParseDuration(goalDoc.Period); err != nil {
			return ex, fmt.Errorf("goal %d period: %w", i, err)
		}
		if goal.Period <= 0 {
			return ex, fmt.Errorf("goal %d period must be positive", i)
		}
		goal.RepsPerPeriod = goalDoc.Reps
		goal.SetsPerPeriod = goalDoc.Sets
		ex.Goals = append(ex.Goals, goal)
	}

	return ex, nil
}

func parsePeriod(doc periodDocument) (schedule.WorkoutPeriod, error) {
	var period schedule.WorkoutPeriod

	weekday, ok := weekdays[strings.ToLower(doc.Weekday)]
	if !ok {
		return period, fmt.Errorf("unknown weekday %q", doc.Weekday)
	}
	period.Weekday = weekday

	var err error
	if period.Start, err = parseClock(doc.Start); err != nil {
		return period, fmt.Errorf("start: %w", err)
	}
	if period.End, err = parseClock(doc.End); err != nil {
		return period, fmt.Errorf("end: %w", err)
	}
	if period.Start > period.End {
		return period, fmt.Errorf("start %s is after end %s", doc.Start, doc.End)
	}

	return period, nil
}

// parseClock converts a wall-clock time like "11:00" into the offset from
// midnight. Hours may pass 23 so a window can reach past midnight, matching
// the unclamped period offsets the engine evaluates.
func parseClock(value string) (time.Duration, error) {
	hoursStr, minutesStr, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("parse clock time %q: want HH:MM", value)
	}
	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("parse clock time %q: bad hours", value)
	}
	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("parse clock time %q: bad minutes", value)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}
