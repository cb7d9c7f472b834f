package main

import (
	"net/http"
)

// statsGET recomputes the dashboard statistics from the user's current
// records.
func (app *application) statsGET(w http.ResponseWriter, r *http.Request) {
	stats, err := app.workoutService.Stats(r.Context(), ownerIDFromContext(r.Context()))
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, stats)
}
