// Package workout holds the workout record store and the pure aggregation
// logic deriving dashboard statistics and fatigue assessments from it.
package workout

import (
	"context"
	"log/slog"
	"time"

	"github.com/fitlogapp/fitlog/internal/errors"
	"github.com/fitlogapp/fitlog/internal/sqlite"
)

// Service handles the business logic for workout records.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
}

// NewService creates a new workout service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
	}
}

// EnsureOwner creates a new owner identity and returns its id. Called once
// per client session; the id is pinned in the session afterwards.
func (s *Service) EnsureOwner(ctx context.Context) (int64, error) {
	id, err := s.repo.createUser(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "create owner")
	}
	return id, nil
}

// Log records a new workout for the owner.
func (s *Service) Log(ctx context.Context, ownerID int64, draft Draft) (Workout, error) {
	if draft.Date.IsZero() {
		draft.Date = time.Now()
	}
	w, err := s.repo.create(ctx, ownerID, draft)
	if err != nil {
		return Workout{}, errors.Wrap(err, "log workout")
	}
	return w, nil
}

// Complete marks a workout as completed so it starts counting toward stats
// and fatigue.
func (s *Service) Complete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.markCompleted(ctx, ownerID, id); err != nil {
		return errors.Wrap(err, "complete workout", slog.Int64("id", id))
	}
	return nil
}

// Delete removes a workout record.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.delete(ctx, ownerID, id); err != nil {
		return errors.Wrap(err, "delete workout", slog.Int64("id", id))
	}
	return nil
}

// List returns all of the owner's workout records, newest first.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Workout, error) {
	workouts, err := s.repo.listByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list workouts")
	}
	return workouts, nil
}

// Stats recomputes the dashboard snapshot from the owner's current records.
func (s *Service) Stats(ctx context.Context, ownerID int64) (Stats, error) {
	workouts, err := s.repo.listByOwner(ctx, ownerID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "list workouts for stats")
	}
	return CalculateStats(workouts, time.Now()), nil
}

// RecentCompleted returns up to limit most recent completed workouts,
// newest first. This feeds the recovery advisor.
func (s *Service) RecentCompleted(ctx context.Context, ownerID int64, limit int) ([]Workout, error) {
	workouts, err := s.repo.listByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list workouts for recovery")
	}
	recent := make([]Workout, 0, limit)
	for _, w := range workouts {
		if !w.Completed {
			continue
		}
		recent = append(recent, w)
		if len(recent) == limit {
			break
		}
	}
	return recent, nil
}
