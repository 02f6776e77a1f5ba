package env

import (
	"github.com/rs/zerolog/log"
)

// Handler wraps an environment and keeps real play separate from
// simulated play. Real plays advance the reward/penalty/step counters;
// simulated plays run off a checkpoint taken on the first SimAction of a
// session and never touch the counters. At most one simulation session
// is outstanding at a time.
type Handler[S comparable, A comparable] struct {
	env        Environment[S, A]
	simulating bool

	reward   float64
	penalty  float64
	numSteps int
}

func NewHandler[S comparable, A comparable](e Environment[S, A]) *Handler[S, A] {
	if e == nil {
		panic("handler needs an environment")
	}
	return &Handler[S, A]{env: e}
}

// PlayAction commits a to the real environment. Any active simulation
// session is rolled back first so the action applies to the real state.
func (h *Handler[S, A]) PlayAction(a A) Outcome[S] {
	if h.simulating {
		h.env.RestoreCheckpoint()
		h.simulating = false
	}
	o := h.env.PlayAction(a)
	h.numSteps++
	h.reward += o.Reward
	h.penalty += o.Penalty
	return o
}

// SimAction plays a without committing: the first call of a session
// checkpoints the environment, and counters are left alone.
func (h *Handler[S, A]) SimAction(a A) Outcome[S] {
	if !h.simulating {
		h.env.MakeCheckpoint()
		h.simulating = true
	}
	return h.env.PlayAction(a)
}

// SimReset rolls back to the checkpoint and ends the session. Calling it
// with no session active is a no-op.
func (h *Handler[S, A]) SimReset() {
	if h.simulating {
		h.env.RestoreCheckpoint()
		h.simulating = false
	}
}

// Reset zeros the real-play counters.
func (h *Handler[S, A]) Reset() {
	log.Debug().Msg("resetting handler counters")
	h.reward = 0
	h.penalty = 0
	h.numSteps = 0
}

func (h *Handler[S, A]) Reward() float64 {
	return h.reward
}

func (h *Handler[S, A]) Penalty() float64 {
	return h.penalty
}

func (h *Handler[S, A]) NumSteps() int {
	return h.numSteps
}

func (h *Handler[S, A]) NumActions() int {
	return h.env.NumActions()
}

func (h *Handler[S, A]) PossibleActions() []A {
	return h.env.PossibleActions()
}

func (h *Handler[S, A]) GetAction(i int) A {
	return h.env.GetAction(i)
}

func (h *Handler[S, A]) CurrentState() S {
	return h.env.CurrentState()
}

func (h *Handler[S, A]) IsOver() bool {
	return h.env.IsOver()
}
