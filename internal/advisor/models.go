package advisor

import (
	"github.com/fitlogapp/fitlog/internal/workout"
)

// Status grades how urgently the user needs rest, from rest (most urgent)
// down to ready.
type Status string

const (
	StatusRest     Status = "rest"
	StatusLight    Status = "light"
	StatusModerate Status = "moderate"
	StatusReady    Status = "ready"
)

// IsValid validates a Status.
func (s Status) IsValid() bool {
	switch s {
	case StatusRest, StatusLight, StatusModerate, StatusReady:
		return true
	default:
		return false
	}
}

// Recommendation is the recovery advice shown in the recovery widget.
// Every field except SuggestedWorkout is always populated; SuggestedWorkout
// is absent when the status is rest.
type Recommendation struct {
	Status           Status   `json:"status"`
	Title            string   `json:"title"`
	Message          string   `json:"message"`
	Tips             []string `json:"tips"`
	Insights         string   `json:"insights"`
	SuggestedWorkout *string  `json:"suggestedWorkout,omitempty"`
}

// RecoveryRequest carries the inputs for a recovery recommendation.
type RecoveryRequest struct {
	// Workouts is the user's recent history, any order. Only completed
	// records influence the result.
	Workouts []workout.Workout
	// UserName optionally personalizes the prompt.
	UserName string
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid validates a Role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ChatTurn is a single prior message in the conversation. The caller retains
// the history; nothing is persisted here.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries a new user message plus the caller-retained history.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatResult is the chat advisor's reply. Error is informational: it tags
// offline mode and transport problems without ever failing the call.
type ChatResult struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}
