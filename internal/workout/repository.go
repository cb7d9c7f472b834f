package workout

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/fitlogapp/fitlog/internal/errors"
	"github.com/fitlogapp/fitlog/internal/sqlite"
)

// ErrNotFound is returned when a workout record does not exist or belongs to
// a different owner.
var ErrNotFound = errors.NewSentinel("workout not found")

// sqliteRepository handles database operations for workout records.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// createUser inserts a new user row and returns its id.
func (r *sqliteRepository) createUser(ctx context.Context) (int64, error) {
	res, err := r.db.ReadWrite.ExecContext(ctx, `INSERT INTO users DEFAULT VALUES`)
	if err != nil {
		return 0, errors.Wrap(err, "insert user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "user insert id")
	}
	return id, nil
}

// create inserts a workout record for the owner and returns it with the
// generated id.
func (r *sqliteRepository) create(ctx context.Context, ownerID int64, draft Draft) (Workout, error) {
	res, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workouts (owner_id, name, date_ms, duration_minutes, completed)
		VALUES (?, ?, ?, ?, ?)`,
		ownerID, draft.Name, draft.Date.UnixMilli(), draft.DurationMinutes, draft.Completed)
	if err != nil {
		return Workout{}, errors.Wrap(err, "insert workout")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Workout{}, errors.Wrap(err, "workout insert id")
	}
	return Workout{
		ID:              id,
		OwnerID:         ownerID,
		Name:            draft.Name,
		Date:            draft.Date,
		DurationMinutes: draft.DurationMinutes,
		Completed:       draft.Completed,
	}, nil
}

// listByOwner returns all workout records for the owner ordered by date
// descending.
func (r *sqliteRepository) listByOwner(ctx context.Context, ownerID int64) ([]Workout, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, owner_id, name, date_ms, duration_minutes, completed
		FROM workouts
		WHERE owner_id = ?
		ORDER BY date_ms DESC, id DESC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "query workouts")
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var (
			w      Workout
			dateMs int64
		)
		if err = rows.Scan(&w.ID, &w.OwnerID, &w.Name, &dateMs, &w.DurationMinutes, &w.Completed); err != nil {
			return nil, errors.Wrap(err, "scan workout")
		}
		w.Date = time.UnixMilli(dateMs)
		workouts = append(workouts, w)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate workouts")
	}

	return workouts, nil
}

// markCompleted flips the completed flag on the owner's workout.
func (r *sqliteRepository) markCompleted(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workouts SET completed = 1
		WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return errors.Wrap(err, "update workout")
	}
	return assertOneRow(res)
}

// delete removes the owner's workout record.
func (r *sqliteRepository) delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM workouts
		WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return errors.Wrap(err, "delete workout")
	}
	return assertOneRow(res)
}

func assertOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
