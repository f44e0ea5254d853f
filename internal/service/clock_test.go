package service

import (
	"testing"

	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

func TestApplyTickDecrementsActiveClock(t *testing.T) {
	state := model.NewSessionState(twoQuestionTest())
	state.RemainingSeconds = 3

	if expired := applyTick(state); expired {
		t.Fatal("expired too early")
	}
	if state.RemainingSeconds != 2 {
		t.Errorf("remaining = %d, want 2", state.RemainingSeconds)
	}
}

func TestApplyTickSignalsExpiryExactlyOnce(t *testing.T) {
	state := model.NewSessionState(twoQuestionTest())
	state.RemainingSeconds = 1

	if expired := applyTick(state); !expired {
		t.Fatal("expected expiry when clock hits zero")
	}
	if state.RemainingSeconds != 0 || !state.Expired {
		t.Errorf("state = remaining %d expired %v, want 0/true", state.RemainingSeconds, state.Expired)
	}

	// Subsequent ticks must not re-signal or go negative.
	if expired := applyTick(state); expired {
		t.Error("expiry signalled twice")
	}
	if state.RemainingSeconds != 0 {
		t.Errorf("remaining went to %d after expiry", state.RemainingSeconds)
	}
}

func TestApplyTickIgnoresNonActivePhases(t *testing.T) {
	for _, phase := range []model.AttemptPhase{model.PhaseUninitialized, model.PhaseSubmitting, model.PhaseSubmitted} {
		state := model.NewSessionState(twoQuestionTest())
		state.Phase = phase
		state.RemainingSeconds = 10

		if expired := applyTick(state); expired {
			t.Errorf("phase %s: unexpected expiry", phase)
		}
		if state.RemainingSeconds != 10 {
			t.Errorf("phase %s: clock moved to %d", phase, state.RemainingSeconds)
		}
	}
}
