package store

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

func newTestState(t *testing.T) *model.SessionState {
	t.Helper()
	test := &model.MockTest{
		ID:              uuid.New(),
		DurationMinutes: 2,
		Questions:       make([]model.Question, 3),
	}
	return model.NewSessionState(test)
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	state := newTestState(t)
	state.Answers[1] = 2
	state.ToggleReview(0)
	state.RemainingSeconds = 75

	if err := s.Put(ctx, "attempt:k:state", state); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "attempt:k:state")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Answers[1] != 2 || !got.IsMarked(0) || got.RemainingSeconds != 75 {
		t.Fatalf("state did not round-trip: %+v", got)
	}
	if got.Phase != model.PhaseActive || !got.Initialized {
		t.Fatalf("expected initialized active state, got %+v", got)
	}
}

func TestRedisSessionStoreDelete(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	if err := s.Put(ctx, "attempt:gone:state", newTestState(t)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, "attempt:gone:state"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.Get(ctx, "attempt:gone:state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if mr.Exists("attempt:gone:state") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestRedisSessionStoreMissingKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessionStore(client, time.Hour)

	if _, err := s.Get(context.Background(), "attempt:never:state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisSessionStoreAppliesTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisSessionStore(client, time.Minute)

	if err := s.Put(context.Background(), "attempt:ttl:state", newTestState(t)); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists("attempt:ttl:state") {
		t.Fatalf("expected key to expire after TTL")
	}
}
