package main

import (
	"net/http"

	"github.com/fitlogapp/fitlog/internal/advisor"
)

// recoveryHistoryLimit is how many recent completed workouts feed the
// recovery recommendation.
const recoveryHistoryLimit = 10

// recoveryGET returns today's recovery recommendation. The advisor never
// fails; with no AI configured or an unreachable service it answers from its
// deterministic rules.
func (app *application) recoveryGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workouts, err := app.workoutService.RecentCompleted(ctx, ownerIDFromContext(ctx), recoveryHistoryLimit)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	recommendation := app.advisor.Recommend(ctx, advisor.RecoveryRequest{Workouts: workouts})
	app.writeJSON(w, r, http.StatusOK, recommendation)
}
