package main

import (
	"net/http"
	"time"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		base = func(timeout time.Duration, next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				app.timeout(timeout, next))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(base(defaultTimeout, next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				base(defaultTimeout, app.currentUser(next)))))
		}
		// The AI-backed endpoints wait on a remote service and get a longer
		// request budget.
		sessionSlow = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				base(aiTimeout, app.currentUser(next)))))
		}
	)

	mux.Handle("GET /api/stats", session(http.HandlerFunc(app.statsGET)))
	mux.Handle("GET /api/recovery", sessionSlow(http.HandlerFunc(app.recoveryGET)))
	mux.Handle("POST /api/chat", sessionSlow(http.HandlerFunc(app.chatPOST)))

	mux.Handle("POST /api/workouts", session(http.HandlerFunc(app.workoutLogPOST)))
	mux.Handle("GET /api/workouts", session(http.HandlerFunc(app.workoutListGET)))
	mux.Handle("POST /api/workouts/{id}/complete", session(http.HandlerFunc(app.workoutCompletePOST)))
	mux.Handle("DELETE /api/workouts/{id}", session(http.HandlerFunc(app.workoutDELETE)))

	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/test/timeout", noAuth(http.HandlerFunc(app.testTimeout)))

	return mux
}
