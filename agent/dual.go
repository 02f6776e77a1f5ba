package agent

import (
	"math"

	"github.com/rs/zerolog/log"

	"ramcts/env"
	"ramcts/search"
)

// Dual is Lagrangian UCT: the risk constraint is folded into the reward
// as reward - lambda*penalty, and lambda climbs by projected subgradient
// steps whenever the greedy root action overshoots the threshold.
type Dual[S comparable, A comparable] struct {
	params
	handler *env.Handler[S, A]
	data    *search.DualData[S, A]
	tree    *search.Tree[S, A, search.DualData[S, A], search.PointValue, search.PointValue]
	step    int
	rebuilt bool
	dumped  bool
}

func NewDual[S comparable, A comparable](e env.Environment[S, A], options ...Option) *Dual[S, A] {
	p := defaultParams()
	for _, option := range options {
		option(&p)
	}
	p.validate()

	a := &Dual[S, A]{params: p, rebuilt: true}
	e.Reset()
	a.SetHandler(env.NewHandler(e))
	return a
}

func (a *Dual[S, A]) SetHandler(h *env.Handler[S, A]) {
	a.handler = h
	a.data = &search.DualData[S, A]{
		Lambda:      0,
		RiskThd:     a.riskThd,
		Exploration: a.exploration,
		LR:          a.lr,
		Handler:     h,
	}
	a.tree = &search.Tree[S, A, search.DualData[S, A], search.PointValue, search.PointValue]{
		Handler:      h,
		Common:       a.data,
		Gamma:        a.gamma,
		SelectAction: search.SelectActionDual[S, A],
		PropagateV:   search.PropagatePointV[S, A, search.DualData[S, A]],
		PropagateQ:   search.PropagatePointQ[S, A, search.DualData[S, A]],
		Rand:         a.rng,
	}
	a.tree.ResetRoot()
	a.rebuilt = true
}

func (a *Dual[S, A]) Play() {
	if a.handler.IsOver() {
		panic("cannot play: environment is over")
	}
	a.collector.Start(a.Name(), a.step)
	a.collector.SetTreeRebuilt(a.rebuilt)
	a.rebuilt = false

	for i := 0; i < a.numSim; i++ {
		leaf := a.tree.Select(a.maxDepth)
		a.tree.Expand(leaf)
		r, p := a.tree.Rollout(leaf, a.maxDepth)
		a.tree.Propagate(leaf, r, p)
		a.handler.SimReset()
		a.updateLambda()
		a.collector.AddSimulation()
	}

	root := a.tree.Root
	if root.Leaf() && !root.Terminal {
		a.tree.Expand(root)
	}
	act := search.SelectActionDual[S, A](root, false)

	a.dumpTreeOnce()

	o := a.handler.PlayAction(act)
	log.Debug().Msgf("%s step %d: action=%v lambda=%.3f r=%.3f p=%.3f done=%v",
		a.Name(), a.step, act, a.data.Lambda, o.Reward, o.Penalty, o.Done)

	root.Child(act).AddOutcome(o)
	a.collector.SetRootVisits(root.NumVisits)
	a.tree.Descend(act, o.State)
	a.step++
}

// updateLambda takes one projected subgradient step on the multiplier,
// driven by the greedy root action's penalty estimate.
func (a *Dual[S, A]) updateLambda() {
	root := a.tree.Root
	if root.Leaf() {
		return
	}
	act := search.SelectActionDual[S, A](root, false)
	an := root.Child(act)
	a.data.Lambda = math.Max(0, a.data.Lambda+a.lr*(an.Q.Penalty-a.data.RiskThd))
}

func (a *Dual[S, A]) Reset() {
	log.Debug().Msgf("reset: %s", a.Name())
	a.handler.Reset()
	a.data.Lambda = 0
	a.data.RiskThd = a.riskThd
	a.tree.ResetRoot()
	a.step = 0
	a.rebuilt = true
}

// Handler exposes the bound environment handler.
func (a *Dual[S, A]) Handler() *env.Handler[S, A] {
	return a.handler
}

func (a *Dual[S, A]) Train() {}

func (a *Dual[S, A]) IsTrainable() bool {
	return false
}

func (a *Dual[S, A]) Name() string {
	return "dual_uct"
}

// Lambda exposes the current multiplier, mainly for diagnostics.
func (a *Dual[S, A]) Lambda() float64 {
	return a.data.Lambda
}

func (a *Dual[S, A]) dumpTreeOnce() {
	if a.dumped {
		return
	}
	a.dumped = true
	log.Debug().Str("agent", a.Name()).Msg(search.DotTree(a.tree.Root, 9))
}
