package performance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fitlogapp/fitlog/internal/advisor"
	"github.com/fitlogapp/fitlog/internal/sqlite"
	"github.com/fitlogapp/fitlog/internal/testhelpers"
	"github.com/fitlogapp/fitlog/internal/workout"
)

// Exercises many owners logging and reading concurrently. The read pool
// allows parallel readers while the single writer connection serializes
// writes, so nothing here should block or corrupt another owner's data.
func TestWorkoutService_ConcurrentOwners(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	ctx := context.Background()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	service := workout.NewService(db, logger)

	const (
		numOwners        = 50
		workoutsPerOwner = 10
		maxTestDuration  = 30 * time.Second
	)

	testCtx, cancel := context.WithTimeout(ctx, maxTestDuration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(testCtx)
	g.SetLimit(16) //nolint:mnd // keep some pressure without exhausting the pools.
	for range numOwners {
		g.Go(func() error {
			ownerID, err := service.EnsureOwner(gctx)
			if err != nil {
				return fmt.Errorf("ensure owner: %w", err)
			}
			for j := range workoutsPerOwner {
				if _, err = service.Log(gctx, ownerID, workout.Draft{
					Name:            fmt.Sprintf("Session %d", j+1),
					Date:            time.Now().AddDate(0, 0, -j),
					DurationMinutes: 30,
					Completed:       true,
				}); err != nil {
					return fmt.Errorf("log workout: %w", err)
				}
			}
			stats, err := service.Stats(gctx, ownerID)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			if stats.TotalWorkouts != workoutsPerOwner {
				return fmt.Errorf("owner %d: total workouts = %d, want %d",
					ownerID, stats.TotalWorkouts, workoutsPerOwner)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		t.Fatal(err)
	}

	duration := time.Since(start)
	t.Logf("Processed %d owners with %d workouts each in %v (%.1f workouts/second)",
		numOwners, workoutsPerOwner, duration,
		float64(numOwners*workoutsPerOwner)/duration.Seconds())
}

// The advisor's offline path is pure computation and must handle many
// concurrent callers without shared state issues.
func TestAdvisor_ConcurrentRecommendations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	service := advisor.NewService(advisor.Config{}, logger)

	history := []workout.Workout{
		{Name: "Run", Date: time.Now().Add(-2 * time.Hour), DurationMinutes: 30, Completed: true},
		{Name: "Lift", Date: time.Now().AddDate(0, 0, -1), DurationMinutes: 60, Completed: true},
	}

	const numCallers = 100

	g, ctx := errgroup.WithContext(context.Background())
	for i := range numCallers {
		g.Go(func() error {
			rec := service.Recommend(ctx, advisor.RecoveryRequest{Workouts: history})
			if !rec.Status.IsValid() || rec.Title == "" {
				return fmt.Errorf("caller %d: malformed recommendation: %+v", i, rec)
			}
			result := service.Chat(ctx, advisor.ChatRequest{
				Message: fmt.Sprintf("Question %d", i),
			})
			if result.Response == "" {
				return fmt.Errorf("caller %d: empty chat response", i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
