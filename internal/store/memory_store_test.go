package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

func TestMemorySessionStoreIsolatesCopies(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	state := newTestState(t)
	if err := s.Put(ctx, "k", state); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	state.Answers[0] = 3

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Answers[0] != model.Unanswered {
		t.Fatalf("stored state was mutated through caller reference")
	}

	// And mutating a returned copy must not leak back either.
	got.Answers[0] = 1
	again, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Answers[0] != model.Unanswered {
		t.Fatalf("stored state was mutated through returned reference")
	}
}

func TestMemorySessionStoreDelete(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	if err := s.Put(ctx, "k", newTestState(t)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 stored session, got %d", s.Len())
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestPracticeResultStore(t *testing.T) {
	s := NewPracticeResultStore(time.Hour)
	t.Cleanup(s.Close)

	rec := &model.ResultRecord{
		TestID:      uuid.New(),
		CandidateID: "cand-1",
		Score:       4,
		TotalMarks:  5,
	}
	s.Put("test-123", rec)

	got, ok := s.Get("test-123")
	if !ok {
		t.Fatalf("expected stored practice result")
	}
	if got.Score != 4 || got.CandidateID != "cand-1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if _, ok := s.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestPracticeResultStoreCleanup(t *testing.T) {
	s := NewPracticeResultStore(time.Nanosecond)
	s.Put("stale", &model.ResultRecord{CandidateID: "cand-2"})

	time.Sleep(time.Millisecond)
	s.cleanup()

	if _, ok := s.Get("stale"); ok {
		t.Fatalf("expected stale entry to be reaped")
	}
	s.Close()
	s.Close() // idempotent
}
