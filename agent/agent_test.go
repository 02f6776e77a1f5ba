package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ramcts/env"
)

// testBandit repeats a two-armed bandit for a fixed horizon: arm 0 pays
// (safeR, safeP), arm 1 pays (riskyR, riskyP). The state is the number
// of pulls so far.
type testBandit struct {
	safeR, safeP   float64
	riskyR, riskyP float64
	horizon        int

	pos        int
	checkpoint int
}

func newTestBandit(horizon int) *testBandit {
	return &testBandit{safeR: 1, safeP: 0, riskyR: 3, riskyP: 1, horizon: horizon}
}

func (e *testBandit) Name() string { return "test_bandit" }

func (e *testBandit) NumActions() int { return 2 }

func (e *testBandit) PossibleActions() []int { return []int{0, 1} }

func (e *testBandit) GetAction(i int) int { return i }

func (e *testBandit) CurrentState() int { return e.pos }

func (e *testBandit) IsOver() bool { return e.pos >= e.horizon }

func (e *testBandit) PlayAction(a int) env.Outcome[int] {
	e.pos++
	o := env.Outcome[int]{State: e.pos, Done: e.IsOver()}
	if a == 0 {
		o.Reward, o.Penalty = e.safeR, e.safeP
	} else {
		o.Reward, o.Penalty = e.riskyR, e.riskyP
	}
	return o
}

func (e *testBandit) MakeCheckpoint() { e.checkpoint = e.pos }

func (e *testBandit) RestoreCheckpoint() { e.pos = e.checkpoint }

func (e *testBandit) Reset() {
	e.pos = 0
	e.checkpoint = 0
}

// corridorEnv is a single-action three-step chain: the only feasible
// path pays one reward per step.
type corridorEnv struct {
	pos        int
	checkpoint int
}

func (e *corridorEnv) Name() string { return "corridor" }

func (e *corridorEnv) NumActions() int { return 1 }

func (e *corridorEnv) PossibleActions() []int { return []int{0} }

func (e *corridorEnv) GetAction(i int) int { return 0 }

func (e *corridorEnv) CurrentState() int { return e.pos }

func (e *corridorEnv) IsOver() bool { return e.pos >= 3 }

func (e *corridorEnv) PlayAction(a int) env.Outcome[int] {
	e.pos++
	return env.Outcome[int]{State: e.pos, Reward: 1, Done: e.IsOver()}
}

func (e *corridorEnv) MakeCheckpoint() { e.checkpoint = e.pos }

func (e *corridorEnv) RestoreCheckpoint() { e.pos = e.checkpoint }

func (e *corridorEnv) Reset() {
	e.pos = 0
	e.checkpoint = 0
}

// novelEnv hands out a fresh state on every play, so the real outcome
// can never have been sampled during simulations.
type novelEnv struct {
	pos        int
	checkpoint int
	serial     int
}

func (e *novelEnv) Name() string { return "novel" }

func (e *novelEnv) NumActions() int { return 2 }

func (e *novelEnv) PossibleActions() []int { return []int{0, 1} }

func (e *novelEnv) GetAction(i int) int { return i }

func (e *novelEnv) CurrentState() int { return e.serial }

func (e *novelEnv) IsOver() bool { return e.pos >= 5 }

func (e *novelEnv) PlayAction(a int) env.Outcome[int] {
	e.pos++
	e.serial++
	return env.Outcome[int]{State: e.serial, Reward: 1, Done: e.IsOver()}
}

// The serial counter survives a restore, so replayed transitions land on
// states the tree has never seen.
func (e *novelEnv) MakeCheckpoint() { e.checkpoint = e.pos }

func (e *novelEnv) RestoreCheckpoint() { e.pos = e.checkpoint }

func (e *novelEnv) Reset() {
	e.pos = 0
	e.checkpoint = 0
	e.serial = 0
}

func runEpisode[S comparable, A comparable](t *testing.T, a Agent[S, A], e env.Environment[S, A]) {
	t.Helper()
	for !e.IsOver() {
		a.Play()
	}
}

func TestPrimalBandit(t *testing.T) {
	t.Run("a tight threshold keeps the agent on the safe arm", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewPrimal[int, int](e,
			WithMaxDepth(1), WithSimulations(200), WithRiskThreshold(0.2),
			WithGamma(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		require.Equal(t, 10, a.Handler().NumSteps(), "One real step per play")
		require.Equal(t, 0.0, a.Handler().Penalty(), "The safe arm incurs no penalty")
		require.Equal(t, 10.0, a.Handler().Reward(), "The safe arm pays one per step")
	})

	t.Run("a vacuous threshold frees the risky arm", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewPrimal[int, int](e,
			WithMaxDepth(1), WithSimulations(200), WithRiskThreshold(1),
			WithGamma(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		require.Equal(t, 30.0, a.Handler().Reward(), "The risky arm dominates on reward")
		require.Equal(t, 10.0, a.Handler().Penalty(), "Every pull pays the penalty")
	})

	t.Run("the promoted root is wired correctly after each play", func(t *testing.T) {
		e := newTestBandit(5)
		a := NewPrimal[int, int](e,
			WithMaxDepth(2), WithSimulations(20), WithRiskThreshold(0.2),
			WithGamma(1), WithSeed(7))

		for !e.IsOver() {
			a.Play()
			require.Nil(t, a.tree.Root.Parent, "The new root has no parent")
			for _, an := range a.tree.Root.Children {
				require.Equal(t, a.tree.Root, an.Parent, "Action children point at the new root")
			}
			for _, an := range a.tree.Root.Children {
				require.GreaterOrEqual(t, an.NumVisits, 0, "Visit counts stay non-negative")
			}
		}
	})
}

func TestDualBandit(t *testing.T) {
	t.Run("the multiplier grows until the risky arm stops paying", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewDual[int, int](e,
			WithMaxDepth(1), WithSimulations(101), WithRiskThreshold(0.2),
			WithGamma(1), WithLearningRate(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		require.Greater(t, a.Lambda(), 1.0, "The multiplier grew against the risky arm")
		require.Less(t, a.Lambda(), 5.0, "The multiplier stabilized near the indifference point")
		require.LessOrEqual(t, a.Handler().Penalty(), 5.0, "Most plays land on the safe arm")
	})

	t.Run("a vacuous threshold keeps the multiplier at zero", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewDual[int, int](e,
			WithMaxDepth(1), WithSimulations(100), WithRiskThreshold(1),
			WithGamma(1), WithLearningRate(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		require.Equal(t, 0.0, a.Lambda(), "No overshoot, no multiplier")
		require.Equal(t, 30.0, a.Handler().Reward(), "The risky arm dominates on reward")
	})

	t.Run("the multiplier is projected and bounded under infeasible risk", func(t *testing.T) {
		e := newTestBandit(10)
		e.safeP = 1 // every action violates the threshold
		a := NewDual[int, int](e,
			WithMaxDepth(1), WithSimulations(50), WithRiskThreshold(0.1),
			WithGamma(1), WithLearningRate(1), WithSeed(7))

		a.Play()

		require.Greater(t, a.Lambda(), 10.0, "The multiplier grows without a feasible action")
		require.GreaterOrEqual(t, a.Lambda(), 0.0, "Projection keeps the multiplier non-negative")
		require.Equal(t, 1, a.Handler().NumSteps(), "Selection stays finite and commits an action")
	})
}

func TestParetoBandit(t *testing.T) {
	t.Run("mixing lands near the target risk", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewPareto[int, int](e,
			WithMaxDepth(1), WithSimulations(200), WithRiskThreshold(0.2),
			WithGamma(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		penalty := a.Handler().Penalty()
		require.GreaterOrEqual(t, penalty, 0.0, "Penalty is a count of risky pulls")
		require.LessOrEqual(t, penalty, 6.0, "Roughly one pull in five is risky at target 0.2")
		require.InDelta(t, 10.0, a.Handler().Reward()-2*penalty, 1e-9,
			"Every risky pull trades one penalty for two extra reward")
	})

	t.Run("a vacuous threshold picks the risky arm outright", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewPareto[int, int](e,
			WithMaxDepth(1), WithSimulations(200), WithRiskThreshold(1),
			WithGamma(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		require.Equal(t, 30.0, a.Handler().Reward(), "The risky arm dominates on reward")
		require.Equal(t, 10.0, a.Handler().Penalty(), "Every pull pays the penalty")
	})

	t.Run("the sampling threshold stays within the unit interval", func(t *testing.T) {
		e := newTestBandit(10)
		a := NewPareto[int, int](e,
			WithMaxDepth(3), WithSimulations(50), WithRiskThreshold(0.2),
			WithGamma(0.9), WithSeed(7))

		for !e.IsOver() {
			a.Play()
			require.GreaterOrEqual(t, a.data.SampleRiskThd, 0.0, "Threshold clamped at zero")
			require.LessOrEqual(t, a.data.SampleRiskThd, 1.0, "Threshold clamped at one")
		}
	})
}

func TestCorridor(t *testing.T) {
	build := func(name string, e env.Environment[int, int]) Agent[int, int] {
		opts := []Option{
			WithMaxDepth(3), WithSimulations(1), WithRiskThreshold(0.5),
			WithGamma(1), WithSeed(7),
		}
		switch name {
		case "dual_uct":
			return NewDual[int, int](e, opts...)
		case "pareto_uct":
			return NewPareto[int, int](e, opts...)
		default:
			return NewPrimal[int, int](e, opts...)
		}
	}

	for _, name := range []string{"primal_uct", "dual_uct", "pareto_uct"} {
		t.Run(name+" commits the single feasible path", func(t *testing.T) {
			e := &corridorEnv{}
			a := build(name, e)

			runEpisode[int, int](t, a, e)

			require.Equal(t, 3, a.Handler().NumSteps(), "Three plays walk the corridor")
			require.Equal(t, 3.0, a.Handler().Reward(), "Each step pays one")
		})
	}

	t.Run("the tree is fully pruned at the terminal root", func(t *testing.T) {
		e := &corridorEnv{}
		a := NewPrimal[int, int](e,
			WithMaxDepth(3), WithSimulations(1), WithRiskThreshold(0.5),
			WithGamma(1), WithSeed(7))

		runEpisode[int, int](t, a, e)

		require.True(t, a.tree.Root.Terminal, "The final root is the terminal state")
		require.True(t, a.tree.Root.Leaf(), "Nothing hangs below the terminal root")
	})
}

func TestUnseenOutcomeDescent(t *testing.T) {
	for _, tc := range []struct {
		name  string
		build func(e env.Environment[int, int]) Agent[int, int]
	}{
		{"primal_uct", func(e env.Environment[int, int]) Agent[int, int] {
			return NewPrimal[int, int](e, WithMaxDepth(2), WithSimulations(5), WithGamma(1), WithSeed(7))
		}},
		{"dual_uct", func(e env.Environment[int, int]) Agent[int, int] {
			return NewDual[int, int](e, WithMaxDepth(2), WithSimulations(5), WithGamma(1), WithSeed(7))
		}},
		{"pareto_uct", func(e env.Environment[int, int]) Agent[int, int] {
			return NewPareto[int, int](e, WithMaxDepth(2), WithSimulations(5), WithGamma(1), WithSeed(7))
		}},
	} {
		t.Run(tc.name+" survives a never-sampled real outcome", func(t *testing.T) {
			e := &novelEnv{}
			a := tc.build(e)

			runEpisode[int, int](t, a, e)

			require.Equal(t, 5, a.Handler().NumSteps(), "Every play descends into a fresh child")
		})
	}
}

func TestZeroSimulations(t *testing.T) {
	t.Run("play still produces an action", func(t *testing.T) {
		e := newTestBandit(3)
		a := NewPrimal[int, int](e,
			WithMaxDepth(1), WithSimulations(0), WithRiskThreshold(0.2),
			WithGamma(1), WithSeed(7))

		a.Play()

		require.Equal(t, 1, a.Handler().NumSteps(), "A budget of zero still commits an action")
	})
}

func TestDeterministicReplay(t *testing.T) {
	run := func() (float64, float64, int) {
		e := newTestBandit(10)
		a := NewPareto[int, int](e,
			WithMaxDepth(2), WithSimulations(50), WithRiskThreshold(0.2),
			WithGamma(0.9), WithSeed(42))
		runEpisode[int, int](t, a, e)
		return a.Handler().Reward(), a.Handler().Penalty(), a.tree.Root.NumVisits
	}

	r1, p1, v1 := run()
	r2, p2, v2 := run()

	require.Equal(t, r1, r2, "Same seed, same rewards")
	require.Equal(t, p1, p2, "Same seed, same penalties")
	require.Equal(t, v1, v2, "Same seed, same tree statistics")
}

func TestAgentReset(t *testing.T) {
	e := newTestBandit(10)
	a := NewDual[int, int](e,
		WithMaxDepth(1), WithSimulations(50), WithRiskThreshold(0.2),
		WithGamma(1), WithSeed(7))

	a.Play()
	a.Play()
	require.NotZero(t, a.Handler().NumSteps(), "Plays advanced the handler")

	e.Reset()
	a.Reset()

	require.Zero(t, a.Handler().NumSteps(), "Reset zeros the step counter")
	require.Zero(t, a.Handler().Reward(), "Reset zeros the reward")
	require.Zero(t, a.Lambda(), "Reset clears the multiplier")
	require.True(t, a.tree.Root.Leaf(), "Reset rebuilds a fresh root")
	require.Equal(t, 0, a.tree.Root.State, "The fresh root sits at the initial state")
}

func TestConstructorValidation(t *testing.T) {
	e := newTestBandit(3)

	require.Panics(t, func() {
		NewPrimal[int, int](e, WithMaxDepth(0))
	}, "A non-positive depth is fatal")
	require.Panics(t, func() {
		NewPrimal[int, int](e, WithRiskThreshold(1.5))
	}, "A threshold outside [0, 1] is fatal")
	require.Panics(t, func() {
		NewDual[int, int](e, WithGamma(0))
	}, "A non-positive gamma is fatal")
	require.Panics(t, func() {
		NewDual[int, int](e, WithLearningRate(-1))
	}, "A negative learning rate is fatal")
	require.Panics(t, func() {
		NewPareto[int, int](e, WithMix(0, 0.01))
	}, "An empty mixing grid is fatal")
}

func TestAgentNames(t *testing.T) {
	e := newTestBandit(3)

	require.Equal(t, "primal_uct", NewPrimal[int, int](e, WithSimulations(1)).Name())
	require.Equal(t, "dual_uct", NewDual[int, int](e, WithSimulations(1)).Name())
	require.Equal(t, "pareto_uct", NewPareto[int, int](e, WithSimulations(1)).Name())

	a := NewPrimal[int, int](e, WithSimulations(1))
	require.False(t, a.IsTrainable(), "This family does not train")
	a.Train() // no-op
}
