package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fitlogapp/fitlog/internal/e2etest"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/testhelpers"
)

// testAPI exercises the core loop: log a workout, check the stats and the
// recovery recommendation, then clean up.
func testAPI(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var created struct {
		ID int64 `json:"id"`
	}
	status, err := client.PostJSON(ctx, "/api/workouts", map[string]any{
		"name":            "Smoke test run",
		"durationMinutes": 20,
		"completed":       true,
	}, &created)
	if err != nil {
		return fmt.Errorf("log workout: %w", err)
	}
	if status != http.StatusCreated {
		return fmt.Errorf("log workout: unexpected status code: %d", status)
	}

	var stats struct {
		TotalWorkouts int `json:"totalWorkouts"`
	}
	if status, err = client.GetJSON(ctx, "/api/stats", &stats); err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	if status != http.StatusOK || stats.TotalWorkouts < 1 {
		return fmt.Errorf("get stats: status %d, total workouts %d", status, stats.TotalWorkouts)
	}

	var recommendation struct {
		Status string `json:"status"`
	}
	if status, err = client.GetJSON(ctx, "/api/recovery", &recommendation); err != nil {
		return fmt.Errorf("get recovery: %w", err)
	}
	if status != http.StatusOK || recommendation.Status == "" {
		return fmt.Errorf("get recovery: status %d, recommendation %q", status, recommendation.Status)
	}

	if status, err = client.Delete(ctx, fmt.Sprintf("/api/workouts/%d", created.ID)); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete workout: unexpected status code: %d", status)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = testAPI(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing API", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
