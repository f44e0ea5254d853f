// Package store provides the persistence primitives the attempt engine
// depends on: a SessionStore for in-progress attempt state and an
// ephemeral store for informal practice results. Production uses the
// Redis-backed implementations; tests substitute the in-memory ones.
package store

import (
	"context"
	"errors"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// ErrNotFound is returned when no state is persisted under a key.
var ErrNotFound = errors.New("session state not found")

// SessionStore persists in-progress attempt state by session key.
// State survives client reloads; it is deleted on completion or reset.
type SessionStore interface {
	Get(ctx context.Context, key string) (*model.SessionState, error)
	Put(ctx context.Context, key string, state *model.SessionState) error
	Delete(ctx context.Context, key string) error
}
