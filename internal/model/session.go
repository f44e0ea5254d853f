package model

import (
	"slices"

	"github.com/google/uuid"
)

// AttemptPhase enumerates the attempt lifecycle states. There is no
// transition back to ACTIVE from SUBMITTED; a fresh attempt requires a new
// session key or an explicit operator reset.
type AttemptPhase string

const (
	PhaseUninitialized AttemptPhase = "UNINITIALIZED"
	PhaseActive        AttemptPhase = "ACTIVE"
	PhaseSubmitting    AttemptPhase = "SUBMITTING"
	PhaseSubmitted     AttemptPhase = "SUBMITTED"
)

// Unanswered marks an answer slot with no selection.
const Unanswered = -1

// SessionState is the persisted in-progress state of one attempt, scoped to
// a session key. Owned exclusively by the attempt engine.
type SessionState struct {
	TestID           uuid.UUID    `json:"test_id"`
	Answers          []int        `json:"answers"`
	MarkedForReview  []int        `json:"marked_for_review"`
	RemainingSeconds int          `json:"remaining_seconds"`
	CurrentQuestion  int          `json:"current_question"`
	Initialized      bool         `json:"initialized"`
	Expired          bool         `json:"expired"`
	Phase            AttemptPhase `json:"phase"`
}

// NewSessionState creates a fresh ACTIVE state for a test: all answer slots
// unanswered, review marks cleared, full time on the clock.
func NewSessionState(test *MockTest) *SessionState {
	answers := make([]int, len(test.Questions))
	for i := range answers {
		answers[i] = Unanswered
	}
	return &SessionState{
		TestID:           test.ID,
		Answers:          answers,
		MarkedForReview:  []int{},
		RemainingSeconds: test.DurationMinutes * 60,
		CurrentQuestion:  0,
		Initialized:      true,
		Phase:            PhaseActive,
	}
}

// IsAnswered reports whether the slot at index i holds a selection.
func (s *SessionState) IsAnswered(i int) bool {
	return i >= 0 && i < len(s.Answers) && s.Answers[i] != Unanswered
}

// IsMarked reports whether index i is marked for review.
func (s *SessionState) IsMarked(i int) bool {
	return slices.Contains(s.MarkedForReview, i)
}

// ToggleReview flips membership of index i in the review set. Toggling
// twice restores the original state.
func (s *SessionState) ToggleReview(i int) {
	if pos := slices.Index(s.MarkedForReview, i); pos >= 0 {
		s.MarkedForReview = slices.Delete(s.MarkedForReview, pos, pos+1)
		return
	}
	s.MarkedForReview = append(s.MarkedForReview, i)
	slices.Sort(s.MarkedForReview)
}

// AttemptedCount returns how many answer slots hold a selection.
func (s *SessionState) AttemptedCount() int {
	n := 0
	for _, a := range s.Answers {
		if a != Unanswered {
			n++
		}
	}
	return n
}

// Clone returns a deep copy, so snapshots taken at submission time cannot
// observe later mutations.
func (s *SessionState) Clone() *SessionState {
	out := *s
	out.Answers = slices.Clone(s.Answers)
	out.MarkedForReview = slices.Clone(s.MarkedForReview)
	return &out
}
