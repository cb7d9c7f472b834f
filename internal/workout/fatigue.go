package workout

import (
	"math"
	"time"
)

const (
	maxFatigueScore = 100.0
	// decayDays is the time constant of the exponential decay: a session's
	// contribution halves roughly every 1.4 days.
	decayDays = 2.0
)

// intensity maps a workout duration to a training intensity on a 25-100
// scale. The thresholds are minutes.
func intensity(durationMinutes int) float64 {
	switch {
	case durationMinutes < 20:
		return 25
	case durationMinutes < 40:
		return 50
	case durationMinutes < 60:
		return 75
	default:
		return 100
	}
}

// AssessFatigue computes the decayed training load and the consecutive
// trained-day count from a set of workout records. It is a pure function of
// its inputs and the injected now.
func AssessFatigue(workouts []Workout, now time.Time) FatigueAssessment {
	var score float64
	for _, w := range workouts {
		if !w.Completed {
			continue
		}
		// daysAgo is continuous on purpose: a workout twelve hours ago weighs
		// more than one a day and a half ago even though both were "yesterday".
		daysAgo := now.Sub(w.Date).Hours() / 24
		score += intensity(w.DurationMinutes) * math.Exp(-daysAgo/decayDays)
	}
	score = math.Min(maxFatigueScore, score)

	return FatigueAssessment{
		Score:           score,
		ConsecutiveDays: consecutiveDays(workouts, now),
	}
}

// consecutiveDays counts backward from today while every day in the run has
// at least one completed workout. A rest day today means zero, there is no
// yesterday leniency here.
func consecutiveDays(workouts []Workout, now time.Time) int {
	loc := now.Location()
	days := completedDays(workouts, loc)
	trained := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		trained[d] = struct{}{}
	}

	count := 0
	for day := truncateToDay(now, loc); ; day = day.AddDate(0, 0, -1) {
		if _, ok := trained[day]; !ok {
			break
		}
		count++
	}
	return count
}
