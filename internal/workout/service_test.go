package workout_test

import (
	"testing"
	"time"

	"github.com/fitlogapp/fitlog/internal/errors"
	"github.com/fitlogapp/fitlog/internal/sqlite"
	"github.com/fitlogapp/fitlog/internal/testhelpers"
	"github.com/fitlogapp/fitlog/internal/workout"
)

func newTestService(t *testing.T) (*workout.Service, int64) {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	svc := workout.NewService(db, logger)
	ownerID, err := svc.EnsureOwner(ctx)
	if err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}
	return svc, ownerID
}

func Test_LogAndList(t *testing.T) {
	ctx := t.Context()
	svc, ownerID := newTestService(t)

	logged, err := svc.Log(ctx, ownerID, workout.Draft{
		Name:            "Morning run",
		Date:            time.Date(2026, time.March, 14, 7, 30, 0, 0, time.UTC),
		DurationMinutes: 35,
		Completed:       true,
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if logged.ID == 0 {
		t.Error("expected generated workout id")
	}

	if _, err = svc.Log(ctx, ownerID, workout.Draft{
		Name:            "Evening lift",
		Date:            time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC),
		DurationMinutes: 50,
		Completed:       false,
	}); err != nil {
		t.Fatalf("Log second workout: %v", err)
	}

	workouts, err := svc.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(workouts) != 2 {
		t.Fatalf("List returned %d workouts, want 2", len(workouts))
	}
	// Newest first.
	if workouts[0].Name != "Evening lift" {
		t.Errorf("first workout = %q, want newest first", workouts[0].Name)
	}
	if !workouts[1].Date.Equal(logged.Date) {
		t.Errorf("round-tripped date = %v, want %v", workouts[1].Date, logged.Date)
	}
}

func Test_ListIsScopedToOwner(t *testing.T) {
	ctx := t.Context()
	svc, ownerID := newTestService(t)

	otherID, err := svc.EnsureOwner(ctx)
	if err != nil {
		t.Fatalf("EnsureOwner: %v", err)
	}

	if _, err = svc.Log(ctx, otherID, workout.Draft{Name: "Someone else's", DurationMinutes: 30}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	workouts, err := svc.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(workouts) != 0 {
		t.Errorf("List returned %d workouts for a fresh owner, want 0", len(workouts))
	}
}

func Test_CompleteAndStats(t *testing.T) {
	ctx := t.Context()
	svc, ownerID := newTestService(t)

	logged, err := svc.Log(ctx, ownerID, workout.Draft{
		Name:            "Intervals",
		Date:            time.Now().Add(-2 * time.Hour),
		DurationMinutes: 40,
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	stats, err := svc.Stats(ctx, ownerID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalWorkouts != 0 {
		t.Errorf("TotalWorkouts before completion = %d, want 0", stats.TotalWorkouts)
	}

	if err = svc.Complete(ctx, ownerID, logged.ID); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	stats, err = svc.Stats(ctx, ownerID)
	if err != nil {
		t.Fatalf("Stats after completion: %v", err)
	}
	if stats.TotalWorkouts != 1 || stats.TotalMinutes != 40 {
		t.Errorf("Stats = %+v, want one 40-minute workout", stats)
	}
	if stats.ThisWeekWorkouts != 1 {
		t.Errorf("ThisWeekWorkouts = %d, want 1", stats.ThisWeekWorkouts)
	}
	if stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", stats.CurrentStreak)
	}
}

func Test_CompleteUnknownWorkout(t *testing.T) {
	ctx := t.Context()
	svc, ownerID := newTestService(t)

	err := svc.Complete(ctx, ownerID, 4242)
	if !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Complete unknown id error = %v, want ErrNotFound", err)
	}
}

func Test_DeleteIsScopedToOwner(t *testing.T) {
	ctx := t.Context()
	svc, ownerID := newTestService(t)

	logged, err := svc.Log(ctx, ownerID, workout.Draft{Name: "Row", DurationMinutes: 25, Completed: true})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	otherID, err := svc.EnsureOwner(ctx)
	if err != nil {
		t.Fatalf("EnsureOwner: %v", err)
	}
	if err = svc.Delete(ctx, otherID, logged.ID); !errors.Is(err, workout.ErrNotFound) {
		t.Errorf("Delete as wrong owner error = %v, want ErrNotFound", err)
	}

	if err = svc.Delete(ctx, ownerID, logged.ID); err != nil {
		t.Fatalf("Delete as owner: %v", err)
	}
	workouts, err := svc.List(ctx, ownerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(workouts) != 0 {
		t.Errorf("List returned %d workouts after delete, want 0", len(workouts))
	}
}

func Test_RecentCompleted(t *testing.T) {
	ctx := t.Context()
	svc, ownerID := newTestService(t)

	for i := range 15 {
		if _, err := svc.Log(ctx, ownerID, workout.Draft{
			Name:            "Session",
			Date:            time.Now().Add(-time.Duration(i) * 24 * time.Hour),
			DurationMinutes: 30,
			Completed:       i%3 != 0, // every third workout left incomplete
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	recent, err := svc.RecentCompleted(ctx, ownerID, 10)
	if err != nil {
		t.Fatalf("RecentCompleted: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("RecentCompleted returned %d workouts, want 10", len(recent))
	}
	for i, w := range recent {
		if !w.Completed {
			t.Errorf("workout %d is not completed", i)
		}
		if i > 0 && recent[i-1].Date.Before(w.Date) {
			t.Errorf("workouts not ordered newest first at index %d", i)
		}
	}
}
