// Package advisor produces recovery recommendations and coaching chat
// replies. Both paths try a remote AI completion when configured and degrade
// to deterministic local results otherwise, so callers always receive a
// well-formed answer and never an error.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/fitlogapp/fitlog/internal/errors"
	"github.com/fitlogapp/fitlog/internal/workout"
)

// maxSummaryWorkouts bounds how much history is embedded in the prompt.
const maxSummaryWorkouts = 10

// Service is the recovery and chat advisor.
type Service struct {
	llm     *llmClient
	enabled bool
	logger  *slog.Logger
	// now is injected in tests to pin day-boundary math.
	now func() time.Time
}

// NewService creates the advisor. An empty Config.APIKey is a valid offline
// mode, not an error: every call then answers from the local fallbacks.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		llm:     newLLMClient(cfg, logger),
		enabled: cfg.APIKey != "",
		logger:  logger,
		now:     time.Now,
	}
}

// Recommend returns a recovery recommendation for the given training
// history. It never fails: remote errors, malformed responses, and missing
// configuration all fall back to the local rule engine, and every returned
// recommendation has all mandatory fields populated.
func (s *Service) Recommend(ctx context.Context, req RecoveryRequest) Recommendation {
	now := s.now()

	if !s.enabled {
		return repair(fallbackRecommendation(req.Workouts, now))
	}

	prompt := recoveryPrompt(req, now)
	content, err := s.llm.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "recovery completion failed, using fallback",
			errors.SlogError(err))
		return repair(fallbackRecommendation(req.Workouts, now))
	}

	rec, err := parseRecommendation(content)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "unparsable recovery response, using fallback",
			errors.SlogError(err))
		return repair(fallbackRecommendation(req.Workouts, now))
	}

	return repair(rec)
}

// recoveryPrompt renders the instructional template with a natural-language
// summary of the most recent completed workouts.
func recoveryPrompt(req RecoveryRequest, now time.Time) string {
	var sb strings.Builder

	greeting := "the user"
	if req.UserName != "" {
		greeting = req.UserName
	}
	fmt.Fprintf(&sb, `You are a recovery coach for a fitness tracking app. Based on %s's recent workouts, recommend how they should train today.

Recent workouts:
%s

Respond with a single JSON object and nothing else, matching exactly this shape:
{
  "status": "rest" | "light" | "moderate" | "ready",
  "title": "short headline, at most 30 characters",
  "message": "1-3 sentence explanation",
  "tips": ["3-4 short actionable tips"],
  "insights": "one sentence insight about their training pattern",
  "suggestedWorkout": "optional workout suggestion, omit when status is rest"
}`, greeting, summarizeWorkouts(req.Workouts, now))

	return sb.String()
}

// summarizeWorkouts lists up to the 10 most recent completed workouts with
// an intensity label and a relative day.
func summarizeWorkouts(workouts []workout.Workout, now time.Time) string {
	completed := make([]workout.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Completed {
			completed = append(completed, w)
		}
	}
	if len(completed) == 0 {
		return "No completed workouts yet."
	}

	slices.SortFunc(completed, func(a, b workout.Workout) int {
		return b.Date.Compare(a.Date)
	})
	if len(completed) > maxSummaryWorkouts {
		completed = completed[:maxSummaryWorkouts]
	}

	var sb strings.Builder
	for _, w := range completed {
		fmt.Fprintf(&sb, "- %s (%d min, %s intensity, %s)\n",
			w.Name, w.DurationMinutes, intensityLabel(w.DurationMinutes), relativeDay(w.Date, now))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// intensityLabel mirrors the fatigue model's duration ladder.
func intensityLabel(durationMinutes int) string {
	switch {
	case durationMinutes < 20:
		return "light"
	case durationMinutes < 40:
		return "moderate"
	case durationMinutes < 60:
		return "vigorous"
	default:
		return "max"
	}
}

// relativeDay renders a date as Today, Yesterday, or "N days ago" counting
// calendar days.
func relativeDay(date, now time.Time) string {
	loc := now.Location()
	days := int(midnight(now, loc).Sub(midnight(date, loc)).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// parseRecommendation decodes the model's response. The remote service is an
// untrusted text producer: responses fenced in markdown code blocks are
// unwrapped before decoding, and anything that still isn't a JSON object is
// an error so the caller can fall back.
func parseRecommendation(content string) (Recommendation, error) {
	var rec Recommendation
	stripped := stripCodeFences(content)
	if err := json.Unmarshal([]byte(stripped), &rec); err != nil {
		return Recommendation{}, errors.Wrap(err, "decode recommendation",
			slog.Int("content_length", len(content)))
	}
	return rec, nil
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag, from the content.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop the language tag on the opening fence line, e.g. ```json.
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// repair defaults every mandatory field the response may have dropped and
// enforces the status invariants. Whatever path produced the raw result, the
// caller receives a fully populated recommendation.
func repair(rec Recommendation) Recommendation {
	if !rec.Status.IsValid() {
		rec.Status = StatusReady
	}
	if rec.Title == "" {
		rec.Title = "Recovery check"
	}
	if rec.Message == "" {
		rec.Message = "Listen to your body and train at an intensity that feels sustainable today."
	}
	if len(rec.Tips) == 0 {
		rec.Tips = []string{
			"Stay hydrated",
			"Prioritize sleep",
			"Warm up before training",
		}
	}
	if rec.Insights == "" {
		rec.Insights = "Consistent training with enough recovery builds long-term progress."
	}
	// Resting means resting.
	if rec.Status == StatusRest {
		rec.SuggestedWorkout = nil
	}
	return rec
}
