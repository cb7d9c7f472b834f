package advisor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"

	"github.com/fitlogapp/fitlog/internal/errors"
)

// maxHistoryTurns bounds how much caller-supplied history is forwarded to
// the model. The caller retains the full conversation; we only send the tail.
const maxHistoryTurns = 10

// chatSystemPrompt grounds the assistant's answers in what the app can
// actually do.
const chatSystemPrompt = `You are the in-app assistant for a fitness tracking app. The app lets users log workouts with a name, date, and duration, mark them completed, see dashboard statistics (total workouts, total minutes, workouts this week, current streak), and get daily recovery recommendations based on their recent training load.

Answer questions about training, recovery, and how to use the app. Be encouraging and concise. If asked about data you cannot see, explain how the user can find it in the app instead of guessing.`

// Canned replies for the degraded modes.
const (
	offlineChatResponse = `I'm currently in offline mode, but here are some quick tips:

- Log a workout from the home screen with its name and duration
- Mark workouts completed so they count toward your stats and streak
- Check the dashboard for your weekly totals and current streak
- Visit the recovery tab for daily training advice`
	connectionChatResponse = "I'm having trouble connecting right now. Please try again in a moment."
	emptyChatResponse      = "Sorry, I didn't catch that. Could you rephrase your question?"
)

// Chat forwards a user message plus bounded history to the assistant.
// It never fails: missing configuration and transport problems produce
// canned replies with the Error field tagging the cause.
func (s *Service) Chat(ctx context.Context, req ChatRequest) ChatResult {
	if !s.enabled {
		return ChatResult{
			Response: offlineChatResponse,
			Error:    "assistant not configured",
		}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(chatSystemPrompt))

	history := req.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		default:
			// Unknown roles are dropped rather than rejected.
			s.logger.LogAttrs(ctx, slog.LevelDebug, "dropping chat turn with unknown role",
				slog.String("role", string(turn.Role)))
		}
	}
	messages = append(messages, openai.UserMessage(req.Message))

	content, err := s.llm.complete(ctx, messages)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "chat completion failed", errors.SlogError(err))
		return ChatResult{
			Response: connectionChatResponse,
			Error:    "assistant unavailable: " + err.Error(),
		}
	}
	if strings.TrimSpace(content) == "" {
		return ChatResult{
			Response: emptyChatResponse,
			Error:    "empty response from assistant",
		}
	}

	return ChatResult{Response: content, Error: ""}
}
