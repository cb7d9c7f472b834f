package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/errors"
	"github.com/fitlogapp/fitlog/internal/workout"
)

// maxWorkoutDurationMinutes rejects obviously bogus durations.
const maxWorkoutDurationMinutes = 24 * 60

// workoutResponse is the wire representation of a workout. Dates travel as
// Unix milliseconds.
type workoutResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Date            int64  `json:"date"`
	DurationMinutes int    `json:"durationMinutes"`
	Completed       bool   `json:"completed"`
}

func toWorkoutResponse(w workout.Workout) workoutResponse {
	return workoutResponse{
		ID:              w.ID,
		Name:            w.Name,
		Date:            w.Date.UnixMilli(),
		DurationMinutes: w.DurationMinutes,
		Completed:       w.Completed,
	}
}

type logWorkoutRequest struct {
	Name string `json:"name"`
	// Date is Unix milliseconds. Zero means now.
	Date            int64 `json:"date"`
	DurationMinutes int   `json:"durationMinutes"`
	Completed       bool  `json:"completed"`
}

type workoutListResponse struct {
	Workouts []workoutResponse `json:"workouts"`
}

func (app *application) workoutLogPOST(w http.ResponseWriter, r *http.Request) {
	var req logWorkoutRequest
	if !app.readJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		app.clientError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if req.DurationMinutes < 1 || req.DurationMinutes > maxWorkoutDurationMinutes {
		app.clientError(w, r, http.StatusBadRequest, "durationMinutes must be between 1 and 1440")
		return
	}

	draft := workout.Draft{
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		Completed:       req.Completed,
	}
	if req.Date != 0 {
		draft.Date = time.UnixMilli(req.Date)
	}

	logged, err := app.workoutService.Log(r.Context(), ownerIDFromContext(r.Context()), draft)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, toWorkoutResponse(logged))
}

func (app *application) workoutListGET(w http.ResponseWriter, r *http.Request) {
	workouts, err := app.workoutService.List(r.Context(), ownerIDFromContext(r.Context()))
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	resp := workoutListResponse{Workouts: make([]workoutResponse, 0, len(workouts))}
	for _, wo := range workouts {
		resp.Workouts = append(resp.Workouts, toWorkoutResponse(wo))
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) workoutCompletePOST(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	err := app.workoutService.Complete(r.Context(), ownerIDFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			app.clientError(w, r, http.StatusNotFound, "workout not found")
			return
		}
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) workoutDELETE(w http.ResponseWriter, r *http.Request) {
	id, ok := app.parseIDParam(w, r)
	if !ok {
		return
	}

	err := app.workoutService.Delete(r.Context(), ownerIDFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, workout.ErrNotFound) {
			app.clientError(w, r, http.StatusNotFound, "workout not found")
			return
		}
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
