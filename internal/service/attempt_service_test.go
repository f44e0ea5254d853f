package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
	"github.com/anooppatell7/education-pixel-backend/internal/store"
)

type fakeTestSource struct {
	tests map[uuid.UUID]*model.MockTest
}

func (f *fakeTestSource) GetByID(_ context.Context, id uuid.UUID) (*model.MockTest, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

type fakeResultStore struct {
	records   []*model.ResultRecord
	insertErr error
}

func (f *fakeResultStore) Insert(_ context.Context, rec *model.ResultRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	rec.ID = uuid.New()
	rec.SubmittedAt = time.Now()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeResultStore) FindByAttempt(_ context.Context, testID uuid.UUID, ref string) (*model.ResultRecord, error) {
	for _, rec := range f.records {
		if rec.TestID == testID && rec.AttemptRef() == ref {
			return rec, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCertQueue struct {
	issues []model.CertificateIssue
	err    error
}

func (f *fakeCertQueue) Enqueue(_ context.Context, issue model.CertificateIssue) error {
	if f.err != nil {
		return f.err
	}
	f.issues = append(f.issues, issue)
	return nil
}

type engineHarness struct {
	svc      *AttemptService
	sessions *store.MemorySessionStore
	results  *fakeResultStore
	practice *store.PracticeResultStore
	certs    *fakeCertQueue
	test     *model.MockTest
}

func newEngineHarness(t *testing.T) *engineHarness {
	t.Helper()
	test := twoQuestionTest()
	sessions := store.NewMemorySessionStore()
	results := &fakeResultStore{}
	practice := store.NewPracticeResultStore(time.Hour)
	t.Cleanup(practice.Close)
	certs := &fakeCertQueue{}
	log := zerolog.Nop()
	pipeline := NewSubmissionPipeline(results, practice, certs, log)
	svc := NewAttemptService(
		&fakeTestSource{tests: map[uuid.UUID]*model.MockTest{test.ID: test}},
		sessions, results, pipeline, log,
	)
	return &engineHarness{svc: svc, sessions: sessions, results: results, practice: practice, certs: certs, test: test}
}

func (h *engineHarness) start(t *testing.T, kind model.AttemptKind) (string, *model.SessionState) {
	t.Helper()
	state, err := h.svc.Start(context.Background(), h.test.ID, "cand-1", kind)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return h.svc.Key(h.test.ID, "cand-1", kind), state
}

func TestStartCreatesFreshActiveState(t *testing.T) {
	h := newEngineHarness(t)
	key, state := h.start(t, model.InformalAttempt())

	if state.Phase != model.PhaseActive {
		t.Errorf("phase = %s, want ACTIVE", state.Phase)
	}
	if state.RemainingSeconds != 30*60 {
		t.Errorf("clock = %d, want full duration", state.RemainingSeconds)
	}
	for i, a := range state.Answers {
		if a != model.Unanswered {
			t.Errorf("answer %d = %d, want unanswered", i, a)
		}
	}
	if len(state.MarkedForReview) != 0 {
		t.Errorf("review marks = %v, want empty", state.MarkedForReview)
	}

	// State must be persisted immediately so a reload can resume.
	if _, err := h.sessions.Get(context.Background(), key); err != nil {
		t.Errorf("persisted state missing: %v", err)
	}
}

func TestStartIsIdempotentWhileActive(t *testing.T) {
	h := newEngineHarness(t)
	key, _ := h.start(t, model.InformalAttempt())

	if _, err := h.svc.SelectAnswer(context.Background(), key, 0, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	state, err := h.svc.Start(context.Background(), h.test.ID, "cand-1", model.InformalAttempt())
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if state.Answers[0] != 2 {
		t.Errorf("second Start wiped progress: answers = %v", state.Answers)
	}
}

func TestStartRejectsUnpublishedAndEmptyTests(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()

	h.test.IsPublished = false
	if _, err := h.svc.Start(ctx, h.test.ID, "cand-1", model.InformalAttempt()); !errors.Is(err, ErrTestNotAvailable) {
		t.Errorf("unpublished: err = %v, want ErrTestNotAvailable", err)
	}

	h.test.IsPublished = true
	questions := h.test.Questions
	h.test.Questions = nil
	if _, err := h.svc.Start(ctx, h.test.ID, "cand-1", model.InformalAttempt()); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("no questions: err = %v, want ErrNoQuestions", err)
	}

	h.test.Questions = questions
	h.test.DurationMinutes = 0
	if _, err := h.svc.Start(ctx, h.test.ID, "cand-1", model.InformalAttempt()); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: err = %v, want ErrInvalidDuration", err)
	}
}

func TestStartBlockedByPriorDurableResult(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	kind := model.OfficialAttempt("EP-REG-1001")
	key, _ := h.start(t, kind)

	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// A new engine (restart) must refuse re-entry for the same attempt.
	fresh := NewAttemptService(
		&fakeTestSource{tests: map[uuid.UUID]*model.MockTest{h.test.ID: h.test}},
		store.NewMemorySessionStore(), h.results,
		NewSubmissionPipeline(h.results, h.practice, nil, zerolog.Nop()),
		zerolog.Nop(),
	)
	if _, err := fresh.Start(ctx, h.test.ID, "cand-1", kind); !errors.Is(err, ErrAttemptCompleted) {
		t.Errorf("err = %v, want ErrAttemptCompleted", err)
	}
}

func TestStartResumesPersistedState(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	if _, err := h.svc.SelectAnswer(ctx, key, 0, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := h.svc.ToggleReview(ctx, key, 1); err != nil {
		t.Fatalf("ToggleReview: %v", err)
	}
	for i := 0; i < 10; i++ {
		h.svc.Tick(ctx)
	}

	// Restart: new engine, same session store.
	fresh := NewAttemptService(
		&fakeTestSource{tests: map[uuid.UUID]*model.MockTest{h.test.ID: h.test}},
		h.sessions, h.results,
		NewSubmissionPipeline(h.results, h.practice, nil, zerolog.Nop()),
		zerolog.Nop(),
	)
	state, err := fresh.Start(ctx, h.test.ID, "cand-1", model.InformalAttempt())
	if err != nil {
		t.Fatalf("resume Start: %v", err)
	}

	if state.Answers[0] != 2 {
		t.Errorf("answers = %v, lost on resume", state.Answers)
	}
	if !state.IsMarked(1) {
		t.Error("review mark lost on resume")
	}
	// The clock resumes where it was persisted; offline seconds are not
	// charged to the candidate.
	if state.RemainingSeconds != 30*60-10 {
		t.Errorf("clock = %d, want %d", state.RemainingSeconds, 30*60-10)
	}
}

func TestSelectAnswerLastWriteWins(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	if _, err := h.svc.SelectAnswer(ctx, key, 0, 1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	state, err := h.svc.SelectAnswer(ctx, key, 0, 3)
	if err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if state.Answers[0] != 3 {
		t.Errorf("answer = %d, want the latest selection", state.Answers[0])
	}

	if _, err := h.svc.SelectAnswer(ctx, key, 99, 0); !errors.Is(err, ErrQuestionIndexRange) {
		t.Errorf("out-of-range question: err = %v", err)
	}
	if _, err := h.svc.SelectAnswer(ctx, key, 0, 4); !errors.Is(err, ErrOptionIndexRange) {
		t.Errorf("out-of-range option: err = %v", err)
	}
}

func TestToggleReviewIsSymmetric(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	state, err := h.svc.ToggleReview(ctx, key, 1)
	if err != nil {
		t.Fatalf("ToggleReview: %v", err)
	}
	if !state.IsMarked(1) {
		t.Error("mark not set")
	}

	state, err = h.svc.ToggleReview(ctx, key, 1)
	if err != nil {
		t.Fatalf("ToggleReview: %v", err)
	}
	if state.IsMarked(1) {
		t.Error("mark not cleared by second toggle")
	}
}

func TestNavigateMovesPointerWithinBounds(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	state, err := h.svc.Navigate(ctx, key, 1)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if state.CurrentQuestion != 1 {
		t.Errorf("current = %d, want 1", state.CurrentQuestion)
	}
	if _, err := h.svc.Navigate(ctx, key, -1); !errors.Is(err, ErrQuestionIndexRange) {
		t.Errorf("negative index: err = %v", err)
	}
}

func TestSubmitOfficialWritesDurableResultOnce(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.OfficialAttempt("EP-REG-1001"))

	if _, err := h.svc.SelectAnswer(ctx, key, 0, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	outcome, err := h.svc.Submit(ctx, key, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Practice {
		t.Error("official attempt delivered to practice store")
	}
	if len(h.results.records) != 1 {
		t.Fatalf("durable records = %d, want 1", len(h.results.records))
	}
	rec := h.results.records[0]
	if rec.Score != 1 || rec.Accuracy != 100 {
		t.Errorf("score/accuracy = %d/%v, want 1/100", rec.Score, rec.Accuracy)
	}
	if rec.ID == uuid.Nil || rec.SubmittedAt.IsZero() {
		t.Error("store-assigned id/timestamp missing")
	}
	if len(h.certs.issues) != 1 || h.certs.issues[0].SerialNumber != rec.CertificateID {
		t.Errorf("certificate issue = %+v, want one for %s", h.certs.issues, rec.CertificateID)
	}

	// Session state is gone; a second Submit replays the recorded outcome
	// without writing again.
	if _, err := h.sessions.Get(ctx, key); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("session state survived submission: %v", err)
	}
	again, err := h.svc.Submit(ctx, key, false)
	if err != nil {
		t.Fatalf("repeat Submit: %v", err)
	}
	if again.ResultID != outcome.ResultID || len(h.results.records) != 1 {
		t.Error("repeat Submit wrote a second record")
	}
}

func TestSubmitInformalStaysEphemeral(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	outcome, err := h.svc.Submit(ctx, key, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.Practice {
		t.Fatal("informal attempt not flagged as practice")
	}
	if len(h.results.records) != 0 {
		t.Errorf("informal attempt reached durable store: %d records", len(h.results.records))
	}
	if _, ok := h.practice.Get(outcome.ResultID); !ok {
		t.Error("practice record missing under outcome key")
	}
	if len(h.certs.issues) != 0 {
		t.Error("informal attempt enqueued a certificate")
	}
}

func TestSubmitFailureRevertsToActive(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.OfficialAttempt("EP-REG-1001"))
	if _, err := h.svc.SelectAnswer(ctx, key, 0, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	h.results.insertErr = errors.New("connection refused")
	if _, err := h.svc.Submit(ctx, key, false); err == nil {
		t.Fatal("expected delivery error")
	}

	state, err := h.svc.State(key)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Phase != model.PhaseActive {
		t.Errorf("phase = %s, want ACTIVE for resubmission", state.Phase)
	}
	if state.Answers[0] != 2 {
		t.Error("answers lost across failed submission")
	}
	if _, serr := h.sessions.Get(ctx, key); serr != nil {
		t.Errorf("session state deleted on failure: %v", serr)
	}

	h.results.insertErr = nil
	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if len(h.results.records) != 1 {
		t.Errorf("records = %d after retry, want 1", len(h.results.records))
	}
}

func TestMutationsRejectedAfterSubmission(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.svc.SelectAnswer(ctx, key, 0, 1); !errors.Is(err, ErrAttemptLocked) {
		t.Errorf("SelectAnswer after submit: err = %v", err)
	}
	if _, err := h.svc.ToggleReview(ctx, key, 0); !errors.Is(err, ErrAttemptLocked) {
		t.Errorf("ToggleReview after submit: err = %v", err)
	}
	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Errorf("Submit after submit should replay outcome, got %v", err)
	}
}

func TestTickExpiryAutoSubmits(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.test.DurationMinutes = 1 // 60 ticks
	key, _ := h.start(t, model.InformalAttempt())

	if _, err := h.svc.SelectAnswer(ctx, key, 0, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	for i := 0; i < 60; i++ {
		h.svc.Tick(ctx)
	}

	outcome, ok := h.svc.Outcome(key)
	if !ok {
		t.Fatal("no outcome after expiry")
	}
	if !outcome.Record.AutoSubmitted {
		t.Error("auto-submitted flag not set")
	}
	if outcome.Record.Score != 1 || outcome.Record.Accuracy != 100 {
		t.Errorf("score/accuracy = %d/%v, want 1/100", outcome.Record.Score, outcome.Record.Accuracy)
	}
	if outcome.Record.TimeTakenSeconds != 60 {
		t.Errorf("time taken = %d, want 60", outcome.Record.TimeTakenSeconds)
	}
}

func TestTickRetriesFailedAutoSubmit(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.test.DurationMinutes = 1
	key, _ := h.start(t, model.OfficialAttempt("EP-REG-1001"))

	h.results.insertErr = errors.New("connection refused")
	for i := 0; i < 60; i++ {
		h.svc.Tick(ctx)
	}
	if _, ok := h.svc.Outcome(key); ok {
		t.Fatal("outcome recorded despite failing store")
	}

	h.results.insertErr = nil
	h.svc.Tick(ctx)

	if _, ok := h.svc.Outcome(key); !ok {
		t.Error("auto-submit not retried after store recovered")
	}
	if len(h.results.records) != 1 {
		t.Errorf("records = %d, want 1", len(h.results.records))
	}
}

func TestSubscribeStreamsTicksAndSubmission(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	h.test.DurationMinutes = 1
	key, _ := h.start(t, model.InformalAttempt())

	ch, cancel, err := h.svc.Subscribe(key)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	first := <-ch
	if first.Event != EventTick || first.RemainingSeconds != 60 {
		t.Errorf("initial event = %+v, want tick with full clock", first)
	}

	h.svc.Tick(ctx)
	tick := <-ch
	if tick.Event != EventTick || tick.RemainingSeconds != 59 {
		t.Errorf("tick event = %+v, want 59s remaining", tick)
	}

	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	submitted := <-ch
	if submitted.Event != EventSubmitted || !submitted.Practice {
		t.Errorf("submitted event = %+v", submitted)
	}
}

func TestResetClearsAttemptForFreshStart(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	kind := model.OfficialAttempt("EP-REG-1001")
	key, _ := h.start(t, kind)

	if _, err := h.svc.SelectAnswer(ctx, key, 0, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := h.svc.Reset(ctx, h.test.ID, "EP-REG-1001"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := h.svc.State(key); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("State after reset: err = %v", err)
	}

	state, err := h.svc.Start(ctx, h.test.ID, "cand-1", kind)
	if err != nil {
		t.Fatalf("Start after reset: %v", err)
	}
	if state.Answers[0] != model.Unanswered {
		t.Error("old answers survived the reset")
	}
}

func TestCompletedAttemptEvictedAfterRetention(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	key, _ := h.start(t, model.InformalAttempt())

	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Inside the retention window the instance lingers and blocks re-entry.
	h.svc.Tick(ctx)
	if _, err := h.svc.Start(ctx, h.test.ID, "cand-1", model.InformalAttempt()); !errors.Is(err, ErrAttemptCompleted) {
		t.Fatalf("Start inside retention: err = %v, want ErrAttemptCompleted", err)
	}

	for i := 0; i < completedRetentionTicks; i++ {
		h.svc.Tick(ctx)
	}
	if _, err := h.svc.State(key); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("State after retention: err = %v, want ErrAttemptNotFound", err)
	}

	// Practice retake starts clean under the same key.
	state, err := h.svc.Start(ctx, h.test.ID, "cand-1", model.InformalAttempt())
	if err != nil {
		t.Fatalf("Start retake: %v", err)
	}
	if state.Phase != model.PhaseActive || state.RemainingSeconds != h.test.DurationMinutes*60 {
		t.Errorf("retake state = %+v, want fresh ACTIVE with full clock", state)
	}
	if state.Answers[0] != model.Unanswered {
		t.Error("old answers survived eviction")
	}
}

func TestOfficialReentryBlockedAfterEviction(t *testing.T) {
	h := newEngineHarness(t)
	ctx := context.Background()
	kind := model.OfficialAttempt("EP-REG-1001")
	key, _ := h.start(t, kind)

	if _, err := h.svc.Submit(ctx, key, false); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for i := 0; i <= completedRetentionTicks; i++ {
		h.svc.Tick(ctx)
	}
	if _, err := h.svc.State(key); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("instance not evicted: err = %v", err)
	}

	// The durable result keeps the registration locked out.
	if _, err := h.svc.Start(ctx, h.test.ID, "cand-1", kind); !errors.Is(err, ErrAttemptCompleted) {
		t.Errorf("Start after eviction: err = %v, want ErrAttemptCompleted", err)
	}
}
