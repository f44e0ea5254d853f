package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionReview   Action = "review"
	ActionPosition Action = "position"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest selects an option for a question.
type AnswerRequest struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
	OptionIndex   int    `json:"option_index"`
}

// ReviewRequest toggles the review mark on a question.
type ReviewRequest struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
}

// PositionRequest moves the current-question pointer.
type PositionRequest struct {
	Action        Action `json:"action"`
	QuestionIndex int    `json:"question_index"`
}

// SubmitRequest finishes the attempt.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventExpired   Event = "expired"
	EventSubmitted Event = "submitted"
	EventError     Event = "error"
	EventPong      Event = "pong"
)

// StateResponse carries the full session state after a mutation.
type StateResponse struct {
	Event Event       `json:"event"`
	State interface{} `json:"state"`
}

// TickResponse is the once-a-second countdown update.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
	Expired          bool  `json:"expired"`
}

// SubmittedResponse announces a completed submission.
type SubmittedResponse struct {
	Event         Event  `json:"event"`
	ResultID      string `json:"result_id"`
	Practice      bool   `json:"practice"`
	AutoSubmitted bool   `json:"auto_submitted"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
