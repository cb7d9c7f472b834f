package main

import (
	"net/http"
	"strings"

	"github.com/fitlogapp/fitlog/internal/advisor"
)

// chatPOST answers a coaching question. Degraded modes (no AI configured,
// unreachable service) still return 200 with a canned reply; the Error field
// in the response tags the cause.
func (app *application) chatPOST(w http.ResponseWriter, r *http.Request) {
	var req advisor.ChatRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		app.clientError(w, r, http.StatusBadRequest, "message is required")
		return
	}

	result := app.advisor.Chat(r.Context(), req)
	app.writeJSON(w, r, http.StatusOK, result)
}
