package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/store"
)

// Stream event names pushed to attempt subscribers.
const (
	EventTick      = "tick"
	EventExpired   = "expired"
	EventSubmitted = "submitted"
)

// completedRetentionTicks is how many ticks a SUBMITTED attempt instance
// lingers in memory before eviction. The window lets late stream consumers
// and repeat submit calls replay the recorded outcome; after it the key is
// free again, so a practice candidate can retake. Official re-entry stays
// blocked by the durable prior-result check in Start.
const completedRetentionTicks = 300

// StreamEvent is a server-pushed update for one attempt (countdown ticks,
// expiry, submission completion).
type StreamEvent struct {
	Event            string `json:"event"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Expired          bool   `json:"expired"`
	AutoSubmitted    bool   `json:"auto_submitted,omitempty"`
	ResultID         string `json:"result_id,omitempty"`
	Practice         bool   `json:"practice,omitempty"`
}

// attempt is the in-process instance of one exam attempt. The engine holds
// at most one per session key.
type attempt struct {
	key           string
	test          *model.MockTest
	kind          model.AttemptKind
	candidateID   string
	state         *model.SessionState
	autoSubmitted bool
	outcome       *SubmissionOutcome
	doneTicks     int
	subscribers   map[chan StreamEvent]struct{}
}

// broadcastLocked fans an event out to all subscribers. Callers must hold
// the service mutex. Slow consumers lose the oldest buffered event rather
// than blocking the tick loop.
func (a *attempt) broadcastLocked(ev StreamEvent) {
	for ch := range a.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// AttemptService is the exam attempt engine: it governs the lifecycle
// UNINITIALIZED → ACTIVE → SUBMITTING → SUBMITTED, drives the countdown,
// tracks answers and review marks, and hands finished attempts to the
// submission pipeline. All mutation funnels through one mutex, so ticks
// and answer updates are strictly sequential.
type AttemptService struct {
	tests    TestSource
	sessions store.SessionStore
	results  ResultStore
	pipeline *SubmissionPipeline
	log      zerolog.Logger

	mu       sync.Mutex
	attempts map[string]*attempt
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	tests TestSource,
	sessions store.SessionStore,
	results ResultStore,
	pipeline *SubmissionPipeline,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		tests:    tests,
		sessions: sessions,
		results:  results,
		pipeline: pipeline,
		log:      log.With().Str("component", "attempt_engine").Logger(),
		attempts: make(map[string]*attempt),
	}
}

// Key derives the session key scoping one attempt: test plus registration
// number for official exams, test plus candidate identity otherwise.
func (s *AttemptService) Key(testID uuid.UUID, candidateID string, kind model.AttemptKind) string {
	ref := candidateID
	if regNo, ok := kind.RegistrationNumber(); ok {
		ref = regNo
	}
	return config.CacheKey.AttemptSessionKey(testID.String(), ref)
}

// Start begins or resumes an attempt.
//
// A fresh entry to ACTIVE requires a published test with questions and a
// positive duration, and no prior completed result for the key. Any stale
// persisted state from an aborted earlier attempt is wiped first; then
// answers reset to all-unanswered, review marks clear, and the clock is
// set to the full duration. Calling Start again while the attempt is
// already ACTIVE is a no-op returning the current state.
//
// If persisted state survives with no live attempt instance (engine
// restart), the attempt resumes from it — including the saved clock, which
// is deliberately not recomputed from a start timestamp: seconds spent
// disconnected are not charged to the candidate.
func (s *AttemptService) Start(ctx context.Context, testID uuid.UUID, candidateID string, kind model.AttemptKind) (*model.SessionState, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}
	if !test.IsPublished {
		return nil, ErrTestNotAvailable
	}
	if len(test.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	if test.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	key := s.Key(testID, candidateID, kind)

	s.mu.Lock()
	if a, ok := s.attempts[key]; ok {
		defer s.mu.Unlock()
		switch a.state.Phase {
		case model.PhaseActive:
			return a.state.Clone(), nil
		case model.PhaseSubmitting:
			return nil, ErrSubmissionInProgress
		default:
			return nil, ErrAttemptCompleted
		}
	}
	s.mu.Unlock()

	ref := candidateID
	if regNo, ok := kind.RegistrationNumber(); ok {
		ref = regNo
	}

	// A completed prior result blocks re-entry. There is no storage-level
	// uniqueness constraint behind this check, so two racing starts on
	// the same key can still both pass it.
	if _, err := s.results.FindByAttempt(ctx, testID, ref); err == nil {
		return nil, ErrAttemptCompleted
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check prior result: %w", err)
	}

	var state *model.SessionState
	persisted, err := s.sessions.Get(ctx, key)
	switch {
	case err == nil && persisted.Initialized && persisted.Phase == model.PhaseActive:
		state = persisted
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("read session state: %w", err)
	default:
		if err := s.sessions.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("clear stale state: %w", err)
		}
		state = model.NewSessionState(test)
		if err := s.sessions.Put(ctx, key, state); err != nil {
			return nil, fmt.Errorf("seed session state: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[key]; ok {
		// Lost a concurrent start race; reuse the winner's instance.
		if a.state.Phase == model.PhaseActive {
			return a.state.Clone(), nil
		}
		return nil, ErrAttemptCompleted
	}

	s.attempts[key] = &attempt{
		key:         key,
		test:        test,
		kind:        kind,
		candidateID: candidateID,
		state:       state,
		subscribers: make(map[chan StreamEvent]struct{}),
	}

	s.log.Info().
		Str("key", key).
		Str("test_id", testID.String()).
		Bool("official", kind.IsOfficial()).
		Int("remaining_seconds", state.RemainingSeconds).
		Msg("Attempt active")

	return state.Clone(), nil
}

// State returns a snapshot of the attempt's current session state.
func (s *AttemptService) State(key string) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[key]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return a.state.Clone(), nil
}

// SelectAnswer overwrites the answer slot for a question unconditionally
// (last write wins). Valid only while the attempt is ACTIVE; every
// mutation persists the updated state so a reload resumes exactly here.
func (s *AttemptService) SelectAnswer(ctx context.Context, key string, questionIndex, optionIndex int) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[key]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if a.state.Phase != model.PhaseActive {
		return nil, ErrAttemptLocked
	}
	if questionIndex < 0 || questionIndex >= len(a.state.Answers) {
		return nil, ErrQuestionIndexRange
	}
	if optionIndex < 0 || optionIndex >= model.OptionCount {
		return nil, ErrOptionIndexRange
	}

	a.state.Answers[questionIndex] = optionIndex
	if err := s.sessions.Put(ctx, key, a.state); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}
	return a.state.Clone(), nil
}

// ToggleReview flips the review mark for a question. Symmetric: toggling
// twice restores the original state.
func (s *AttemptService) ToggleReview(ctx context.Context, key string, questionIndex int) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[key]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if a.state.Phase != model.PhaseActive {
		return nil, ErrAttemptLocked
	}
	if questionIndex < 0 || questionIndex >= len(a.state.Answers) {
		return nil, ErrQuestionIndexRange
	}

	a.state.ToggleReview(questionIndex)
	if err := s.sessions.Put(ctx, key, a.state); err != nil {
		return nil, fmt.Errorf("persist review mark: %w", err)
	}
	return a.state.Clone(), nil
}

// Navigate moves the current question pointer.
func (s *AttemptService) Navigate(ctx context.Context, key string, questionIndex int) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[key]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	if a.state.Phase != model.PhaseActive {
		return nil, ErrAttemptLocked
	}
	if questionIndex < 0 || questionIndex >= len(a.state.Answers) {
		return nil, ErrQuestionIndexRange
	}

	a.state.CurrentQuestion = questionIndex
	if err := s.sessions.Put(ctx, key, a.state); err != nil {
		return nil, fmt.Errorf("persist navigation: %w", err)
	}
	return a.state.Clone(), nil
}

// Submit finalizes an attempt, on user confirmation (auto=false) or timer
// expiry (auto=true). The transition ACTIVE → SUBMITTING snapshots the
// state at that instant; no later mutation can reach the result. A
// re-entrant call while SUBMITTING is rejected as a no-op; a call after
// SUBMITTED returns the recorded outcome.
//
// If the durable write fails the attempt reverts to a resubmittable
// ACTIVE state and the persisted session state is left untouched. On
// success the persisted state is deleted unconditionally.
func (s *AttemptService) Submit(ctx context.Context, key string, auto bool) (*SubmissionOutcome, error) {
	s.mu.Lock()
	a, ok := s.attempts[key]
	if !ok {
		s.mu.Unlock()
		return nil, ErrAttemptNotFound
	}
	switch a.state.Phase {
	case model.PhaseSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmissionInProgress
	case model.PhaseSubmitted:
		outcome := a.outcome
		s.mu.Unlock()
		return outcome, nil
	}

	a.state.Phase = model.PhaseSubmitting
	if auto {
		a.autoSubmitted = true
	}
	snapshot := a.state.Clone()
	test, kind, candidateID, autoFlag := a.test, a.kind, a.candidateID, a.autoSubmitted
	s.mu.Unlock()

	rec := BuildResult(test, snapshot, candidateID, kind, autoFlag)
	outcome, err := s.pipeline.Deliver(ctx, rec, kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Recoverable: back to a resubmittable state, answers preserved.
		a.state.Phase = model.PhaseActive
		return nil, fmt.Errorf("deliver result: %w", err)
	}

	a.state.Phase = model.PhaseSubmitted
	a.outcome = outcome
	if err := s.sessions.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Session cleanup failed")
	}

	a.broadcastLocked(StreamEvent{
		Event:         EventSubmitted,
		AutoSubmitted: autoFlag,
		ResultID:      outcome.ResultID,
		Practice:      outcome.Practice,
	})

	s.log.Info().
		Str("key", key).
		Str("result_id", outcome.ResultID).
		Bool("auto", autoFlag).
		Bool("practice", outcome.Practice).
		Msg("Attempt submitted")

	return outcome, nil
}

// Outcome returns the submission outcome for a completed attempt.
func (s *AttemptService) Outcome(key string) (*SubmissionOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[key]
	if !ok || a.outcome == nil {
		return nil, false
	}
	return a.outcome, true
}

// Subscribe returns a channel of stream events for an attempt, primed with
// the current countdown. The caller must invoke cancel to avoid leaks.
func (s *AttemptService) Subscribe(key string) (<-chan StreamEvent, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[key]
	if !ok {
		return nil, nil, ErrAttemptNotFound
	}

	ch := make(chan StreamEvent, 8)
	a.subscribers[ch] = struct{}{}
	ch <- StreamEvent{Event: EventTick, RemainingSeconds: a.state.RemainingSeconds, Expired: a.state.Expired}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// Reset discards an attempt and its persisted state so a fresh attempt can
// start under the same key. Operator tooling only; rejected while a
// submission is in flight.
func (s *AttemptService) Reset(ctx context.Context, testID uuid.UUID, ref string) error {
	key := config.CacheKey.AttemptSessionKey(testID.String(), ref)

	s.mu.Lock()
	if a, ok := s.attempts[key]; ok {
		if a.state.Phase == model.PhaseSubmitting {
			s.mu.Unlock()
			return ErrSubmissionInProgress
		}
		for ch := range a.subscribers {
			delete(a.subscribers, ch)
			close(ch)
		}
		delete(s.attempts, key)
	}
	s.mu.Unlock()

	if err := s.sessions.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}
	s.log.Info().Str("key", key).Msg("Attempt reset")
	return nil
}

// Run drives the countdown with a wall-clock ticker until ctx is done.
// Call in a goroutine.
func (s *AttemptService) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.log.Info().Msg("Attempt engine started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Attempt engine stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances every ACTIVE attempt by one second, persists the updated
// clocks, and auto-submits attempts whose time has run out. Expired
// attempts whose auto-submission previously failed are retried here on
// each tick. SUBMITTED attempts age out after completedRetentionTicks.
// Exported so tests can drive time synthetically.
func (s *AttemptService) Tick(ctx context.Context) {
	s.mu.Lock()
	var due []string
	for key, a := range s.attempts {
		if a.state.Phase == model.PhaseSubmitted {
			a.doneTicks++
			if a.doneTicks >= completedRetentionTicks {
				for ch := range a.subscribers {
					delete(a.subscribers, ch)
					close(ch)
				}
				delete(s.attempts, key)
				s.log.Debug().Str("key", key).Msg("Completed attempt evicted")
			}
			continue
		}
		if a.state.Phase != model.PhaseActive {
			continue
		}

		justExpired := applyTick(a.state)
		if err := s.sessions.Put(ctx, key, a.state); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("Persist tick failed")
		}

		a.broadcastLocked(StreamEvent{
			Event:            EventTick,
			RemainingSeconds: a.state.RemainingSeconds,
			Expired:          a.state.Expired,
		})
		if justExpired {
			a.broadcastLocked(StreamEvent{Event: EventExpired, Expired: true})
		}
		if a.state.Expired {
			due = append(due, key)
		}
	}
	s.mu.Unlock()

	for _, key := range due {
		if _, err := s.Submit(ctx, key, true); err != nil && !errors.Is(err, ErrSubmissionInProgress) {
			s.log.Error().Err(err).Str("key", key).Msg("Auto-submit failed, retrying next tick")
		}
	}
}
