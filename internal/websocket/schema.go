package websocket

import (
	"github.com/talentflow/talentflow-backend/internal/assessment"
	"github.com/talentflow/talentflow-backend/internal/model"
	"github.com/talentflow/talentflow-backend/internal/taker"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest records one answer. A null value clears it.
type AnswerRequest struct {
	Action Action      `json:"action"`
	QID    string      `json:"q_id"`
	Value  model.Value `json:"value"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventErrors    Event = "errors"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// StateResponse carries the rendered current section.
type StateResponse struct {
	Event Event      `json:"event"`
	State taker.View `json:"state"`
}

// ErrorsResponse lists every failing visible question after a rejected
// submit.
type ErrorsResponse struct {
	Event  Event                   `json:"event"`
	Errors []assessment.FieldError `json:"errors"`
}

// SubmittedResponse confirms a terminal submission.
type SubmittedResponse struct {
	Event      Event  `json:"event"`
	ResponseID string `json:"response_id"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
