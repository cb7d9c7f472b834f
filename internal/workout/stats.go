package workout

import (
	"time"
)

const week = 7 * 24 * time.Hour

// CalculateStats derives the dashboard metrics from a single owner's workout
// records. Only completed workouts count. The function is pure: now is
// injected so the day-boundary math is testable.
func CalculateStats(workouts []Workout, now time.Time) Stats {
	var stats Stats

	weekAgo := now.Add(-week)
	for _, w := range workouts {
		if !w.Completed {
			continue
		}
		stats.TotalWorkouts++
		stats.TotalMinutes += w.DurationMinutes
		// Rolling 7-day window, not a calendar week.
		if !w.Date.Before(weekAgo) {
			stats.ThisWeekWorkouts++
		}
	}

	stats.CurrentStreak = currentStreak(workouts, now)

	return stats
}

// currentStreak walks the distinct completed calendar days from newest to
// oldest. A day extends the streak when it matches the cursor or falls
// exactly one day before it, so the chain survives a single skipped day.
// Anything earlier breaks the streak. Multiple workouts on the same day
// count once because the walk runs over deduplicated days.
func currentStreak(workouts []Workout, now time.Time) int {
	loc := now.Location()
	days := completedDays(workouts, loc)

	streak := 0
	check := truncateToDay(now, loc)
	for _, day := range days {
		if day.Equal(check) || day.Equal(check.AddDate(0, 0, -1)) {
			streak++
			check = day.AddDate(0, 0, -1)
			continue
		}
		break
	}
	return streak
}
