package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fitlogapp/fitlog/internal/testhelpers"
	"github.com/fitlogapp/fitlog/internal/workout"
)

// completionRequest mirrors the fields of the chat completion request body
// the tests care about.
type completionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

// completionBody renders a minimal chat completion response carrying the
// given assistant content.
func completionBody(content string) string {
	return `{"id":"chatcmpl-test","object":"chat.completion","created":1700000000,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` +
		strconv.Quote(content) +
		`}}],"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}}`
}

func readJSONBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// newTestService points the advisor at a fake completion endpoint and pins
// its clock.
func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewService(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	s.now = func() time.Time { return now }
	return s
}

// newOfflineService builds an advisor with no API key configured.
func newOfflineService(t *testing.T) *Service {
	t.Helper()
	s := NewService(Config{}, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	s.now = func() time.Time { return now }
	return s
}

func TestRecommend_ReturnsRemoteRecommendation(t *testing.T) {
	const body = `{"status":"light","title":"Easy day ahead","message":"Yesterday was heavy, keep it light.","tips":["Stretch","Walk","Hydrate"],"insights":"You train hard on weekends.","suggestedWorkout":"Yoga flow"}`

	for name, content := range map[string]string{
		"raw json":        body,
		"markdown fenced": "```json\n" + body + "\n```",
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if _, err := w.Write([]byte(completionBody(content))); err != nil {
					t.Error(err)
				}
			}))

			got := s.Recommend(context.Background(), RecoveryRequest{
				Workouts: []workout.Workout{completedWorkout("Lift", now.AddDate(0, 0, -1), 60)},
			})

			suggestion := "Yoga flow"
			want := Recommendation{
				Status:           StatusLight,
				Title:            "Easy day ahead",
				Message:          "Yesterday was heavy, keep it light.",
				Tips:             []string{"Stretch", "Walk", "Hydrate"},
				Insights:         "You train hard on weekends.",
				SuggestedWorkout: &suggestion,
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Recommend() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecommend_PromptCarriesHistoryAndTuning(t *testing.T) {
	var captured completionRequest
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := readJSONBody(r, &captured); err != nil {
			t.Error(err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(completionBody(`{"status":"ready"}`))); err != nil {
			t.Error(err)
		}
	}))

	s.Recommend(context.Background(), RecoveryRequest{
		Workouts: []workout.Workout{completedWorkout("Morning run", now.Add(-2*time.Hour), 30)},
		UserName: "Alex",
	})

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.Temperature)
	}
	if captured.MaxTokens != 500 {
		t.Errorf("max_tokens = %d, want 500", captured.MaxTokens)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want a single user message", captured.Messages)
	}
	prompt := captured.Messages[0].Content
	for _, want := range []string{"Alex", "Morning run (30 min, moderate intensity, Today)", `"status"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestRecommend_FallsBackOnServerError(t *testing.T) {
	var requests atomic.Int64
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))

	workouts := []workout.Workout{
		completedWorkout("Lift", now.Add(-time.Hour), 70),
		completedWorkout("Lift", now.AddDate(0, 0, -1), 70),
		completedWorkout("Lift", now.AddDate(0, 0, -2), 70),
	}
	got := s.Recommend(context.Background(), RecoveryRequest{Workouts: workouts})
	want := newOfflineService(t).Recommend(context.Background(), RecoveryRequest{Workouts: workouts})

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fallback mismatch with offline result (-want +got):\n%s", diff)
	}
	if got.Status != StatusRest {
		t.Errorf("Status = %q, want rest for three consecutive heavy days", got.Status)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want exactly 1", n)
	}
}

func TestRecommend_FallsBackOnUnparsableResponse(t *testing.T) {
	s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(completionBody("Sure! You should definitely rest today."))); err != nil {
			t.Error(err)
		}
	}))

	got := s.Recommend(context.Background(), RecoveryRequest{})
	if got.Status != StatusReady {
		t.Errorf("Status = %q, want the fallback's ready for an empty history", got.Status)
	}
	assertWellFormed(t, got)
}

func TestRecommend_RepairsPartialResponse(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantStatus Status
	}{
		{name: "only status present", content: `{"status":"light"}`, wantStatus: StatusLight},
		{name: "unknown status", content: `{"status":"shattered","title":"Hmm"}`, wantStatus: StatusReady},
		{name: "rest with contradictory suggestion", content: `{"status":"rest","suggestedWorkout":"Sprints"}`, wantStatus: StatusRest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				if _, err := w.Write([]byte(completionBody(tt.content))); err != nil {
					t.Error(err)
				}
			}))

			got := s.Recommend(context.Background(), RecoveryRequest{})
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			assertWellFormed(t, got)
		})
	}
}

func TestRecommend_OfflineUsesLocalRules(t *testing.T) {
	s := newOfflineService(t)

	got := s.Recommend(context.Background(), RecoveryRequest{
		Workouts: []workout.Workout{completedWorkout("Long ride", now.Add(-2*time.Hour), 120)},
	})
	if got.Status != StatusRest {
		t.Errorf("Status = %q, want rest", got.Status)
	}
	assertWellFormed(t, got)
}
