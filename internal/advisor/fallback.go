package advisor

import (
	"fmt"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/ptr"
	"github.com/fitlogapp/fitlog/internal/workout"
)

// Fatigue thresholds gating the fallback statuses.
const (
	restFatigueThreshold     = 70.0
	lightFatigueThreshold    = 45.0
	moderateFatigueThreshold = 25.0
	restConsecutiveDays      = 3
	lightConsecutiveDays     = 2
)

// fallbackRecommendation is the deterministic rule engine used when no
// remote call is made or the remote call fails. It is a pure function of the
// workout history and now.
func fallbackRecommendation(workouts []workout.Workout, now time.Time) Recommendation {
	assessment := workout.AssessFatigue(workouts, now)

	switch {
	case assessment.Score > restFatigueThreshold || assessment.ConsecutiveDays >= restConsecutiveDays:
		return Recommendation{
			Status: StatusRest,
			Title:  "Time to rest",
			Message: fmt.Sprintf(
				"Your recent training load is high (%d consecutive days). Taking a full rest day now helps your muscles rebuild stronger.",
				assessment.ConsecutiveDays),
			Tips: []string{
				"Aim for 7-9 hours of sleep tonight",
				"Stay hydrated throughout the day",
				"Do some gentle walking if you feel stiff",
				"Eat protein-rich meals to support recovery",
			},
			Insights:         "Muscles grow during rest, not during training.",
			SuggestedWorkout: nil,
		}
	case assessment.Score > lightFatigueThreshold || assessment.ConsecutiveDays == lightConsecutiveDays:
		return Recommendation{
			Status:  StatusLight,
			Title:   "Take it easy today",
			Message: "You've been training consistently. A light session today keeps you moving without adding to your fatigue.",
			Tips: []string{
				"Keep your heart rate low and conversational",
				"Focus on mobility and stretching",
				"Stop early if anything feels off",
			},
			Insights:         "Active recovery clears soreness faster than doing nothing.",
			SuggestedWorkout: ptr.Ref("Yoga or stretching session"),
		}
	case hasRecentCompleted(workouts, now) && assessment.Score > moderateFatigueThreshold:
		return Recommendation{
			Status:  StatusModerate,
			Title:   "Ready for a solid session",
			Message: "Yesterday's work has left some load in your legs, but you're recovered enough for a normal session at moderate intensity.",
			Tips: []string{
				"Warm up thoroughly before loading",
				"Train muscle groups you didn't hit last time",
				"Leave one or two reps in reserve",
			},
			Insights:         "Alternating muscle groups lets you train often without overreaching.",
			SuggestedWorkout: ptr.Ref(complementarySuggestion(workouts)),
		}
	case mostRecentCompleted(workouts) == nil:
		return Recommendation{
			Status:  StatusReady,
			Title:   "Ready when you are",
			Message: "You haven't logged any workouts yet. Start with something you enjoy - consistency beats intensity when you're building the habit.",
			Tips: []string{
				"Pick a realistic schedule you can repeat",
				"Start with 20-30 minute sessions",
				"Log every workout to track your streak",
			},
			Insights:         "The first workout is the hardest one to log.",
			SuggestedWorkout: ptr.Ref("Full-body beginner session"),
		}
	default:
		return Recommendation{
			Status:  StatusReady,
			Title:   "Fully recovered",
			Message: "Your fatigue from earlier sessions has worn off. You're fresh and ready to train at full intensity.",
			Tips: []string{
				"This is a good day for a harder session",
				"Consider progressing weight or distance",
				"Don't forget to warm up properly",
			},
			Insights:         "Training hard while fresh is where progress happens.",
			SuggestedWorkout: ptr.Ref("Strength or interval session"),
		}
	}
}

// hasRecentCompleted reports whether the most recent completed workout
// happened within the last 24 hours.
func hasRecentCompleted(workouts []workout.Workout, now time.Time) bool {
	latest := mostRecentCompleted(workouts)
	return latest != nil && now.Sub(latest.Date) < 24*time.Hour
}

// mostRecentCompleted returns the latest completed workout or nil.
func mostRecentCompleted(workouts []workout.Workout) *workout.Workout {
	var latest *workout.Workout
	for i := range workouts {
		w := &workouts[i]
		if !w.Completed {
			continue
		}
		if latest == nil || w.Date.After(latest.Date) {
			latest = w
		}
	}
	return latest
}

// complementarySuggestion proposes a workout hitting muscle groups the most
// recent session likely didn't. Matching on the free-text workout name is
// best effort; the default is deliberately generic.
func complementarySuggestion(workouts []workout.Workout) string {
	latest := mostRecentCompleted(workouts)
	if latest == nil {
		return "Full-body session"
	}

	name := strings.ToLower(latest.Name)
	switch {
	case containsAny(name, "leg", "squat", "lower", "glute"):
		return "Upper body strength session"
	case containsAny(name, "push", "chest", "bench", "shoulder"):
		return "Pull session (back and biceps)"
	case containsAny(name, "pull", "back", "row", "deadlift"):
		return "Push session (chest and shoulders)"
	case containsAny(name, "run", "bike", "cardio", "swim", "row"):
		return "Strength training session"
	default:
		return "Light cardio or core session"
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
