package service

import (
	"github.com/anooppatell7/education-pixel-backend/internal/model"
)

// applyTick advances the countdown of one attempt by one elapsed second.
// It is a pure reducer over SessionState: the production driver is the
// engine's wall-clock ticker, tests drive it synthetically.
//
// While the attempt is ACTIVE, remaining_seconds decrements by exactly 1
// per tick. When the clock reaches zero the expired flag flips exactly
// once; the return value reports that single transition. Ticks are inert
// in every other phase, so no tick can land after submission has begun.
func applyTick(st *model.SessionState) bool {
	if st.Phase != model.PhaseActive {
		return false
	}
	if st.RemainingSeconds > 0 {
		st.RemainingSeconds--
	}
	if st.RemainingSeconds == 0 && !st.Expired {
		st.Expired = true
		return true
	}
	return false
}
