package workout

import (
	"slices"
	"time"
)

// Workout is a single logged workout record.
type Workout struct {
	ID      int64
	OwnerID int64
	Name    string
	// Date is when the workout occurred, not when it was logged. It may carry
	// any timezone; all day-boundary math truncates it to local midnight.
	Date            time.Time
	DurationMinutes int
	Completed       bool
}

// Draft carries the caller-supplied fields when logging a new workout.
type Draft struct {
	Name            string
	Date            time.Time
	DurationMinutes int
	Completed       bool
}

// Stats summarizes a user's training history for the dashboard. It is
// recomputed from the current record set on every request and never cached.
type Stats struct {
	TotalWorkouts    int `json:"totalWorkouts"`
	TotalMinutes     int `json:"totalMinutes"`
	ThisWeekWorkouts int `json:"thisWeekWorkouts"`
	CurrentStreak    int `json:"currentStreak"`
}

// FatigueAssessment scores recent training load.
type FatigueAssessment struct {
	// Score is a decayed-intensity measure of recent load, clamped to [0, 100].
	Score float64
	// ConsecutiveDays counts calendar days trained in an unbroken run ending
	// today. Unlike the dashboard streak, there is no yesterday leniency.
	ConsecutiveDays int
}

// truncateToDay returns midnight of the calendar day containing t in loc.
func truncateToDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// completedDays returns the distinct calendar days with at least one
// completed workout, newest first.
func completedDays(workouts []Workout, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(workouts))
	days := make([]time.Time, 0, len(workouts))
	for _, w := range workouts {
		if !w.Completed {
			continue
		}
		day := truncateToDay(w.Date, loc)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	// Insertion order is arbitrary, sort newest first.
	slices.SortFunc(days, func(a, b time.Time) int {
		return b.Compare(a)
	})
	return days
}
