package agent

import (
	"github.com/rs/zerolog/log"

	"ramcts/env"
	"ramcts/search"
)

// Primal is constrained UCT: UCB selection over reward restricted to
// actions whose penalty estimate stays under the sampling threshold.
type Primal[S comparable, A comparable] struct {
	params
	handler *env.Handler[S, A]
	data    *search.PrimalData[S, A]
	tree    *search.Tree[S, A, search.PrimalData[S, A], search.PointValue, search.PointValue]
	step    int
	rebuilt bool
	dumped  bool
}

func NewPrimal[S comparable, A comparable](e env.Environment[S, A], options ...Option) *Primal[S, A] {
	p := defaultParams()
	for _, option := range options {
		option(&p)
	}
	p.validate()

	a := &Primal[S, A]{params: p, rebuilt: true}
	e.Reset()
	a.SetHandler(env.NewHandler(e))
	return a
}

func (a *Primal[S, A]) SetHandler(h *env.Handler[S, A]) {
	a.handler = h
	a.data = &search.PrimalData[S, A]{
		RiskThd:       a.riskThd,
		SampleRiskThd: a.riskThd,
		Exploration:   a.exploration,
		Handler:       h,
	}
	a.tree = &search.Tree[S, A, search.PrimalData[S, A], search.PointValue, search.PointValue]{
		Handler:      h,
		Common:       a.data,
		Gamma:        a.gamma,
		SelectAction: search.SelectActionPrimal[S, A],
		PropagateV:   search.PropagatePointV[S, A, search.PrimalData[S, A]],
		PropagateQ:   search.PropagatePointQ[S, A, search.PrimalData[S, A]],
		Rand:         a.rng,
	}
	a.tree.ResetRoot()
	a.rebuilt = true
}

func (a *Primal[S, A]) Play() {
	if a.handler.IsOver() {
		panic("cannot play: environment is over")
	}
	a.collector.Start(a.Name(), a.step)
	a.collector.SetTreeRebuilt(a.rebuilt)
	a.rebuilt = false

	for i := 0; i < a.numSim; i++ {
		a.data.SampleRiskThd = a.data.RiskThd
		leaf := a.tree.Select(a.maxDepth)
		a.tree.Expand(leaf)
		r, p := a.tree.Rollout(leaf, a.maxDepth)
		a.tree.Propagate(leaf, r, p)
		a.handler.SimReset()
		a.collector.AddSimulation()
	}

	root := a.tree.Root
	if root.Leaf() && !root.Terminal {
		a.tree.Expand(root)
	}
	a.data.SampleRiskThd = a.data.RiskThd
	act := search.SelectActionPrimal[S, A](root, false)

	a.dumpTreeOnce()

	o := a.handler.PlayAction(act)
	log.Debug().Msgf("%s step %d: action=%v r=%.3f p=%.3f done=%v",
		a.Name(), a.step, act, o.Reward, o.Penalty, o.Done)

	root.Child(act).AddOutcome(o)
	a.collector.SetRootVisits(root.NumVisits)
	a.tree.Descend(act, o.State)
	a.step++
}

func (a *Primal[S, A]) Reset() {
	log.Debug().Msgf("reset: %s", a.Name())
	a.handler.Reset()
	a.data.RiskThd = a.riskThd
	a.data.SampleRiskThd = a.riskThd
	a.tree.ResetRoot()
	a.step = 0
	a.rebuilt = true
}

// Handler exposes the bound environment handler.
func (a *Primal[S, A]) Handler() *env.Handler[S, A] {
	return a.handler
}

func (a *Primal[S, A]) Train() {}

func (a *Primal[S, A]) IsTrainable() bool {
	return false
}

func (a *Primal[S, A]) Name() string {
	return "primal_uct"
}

func (a *Primal[S, A]) dumpTreeOnce() {
	if a.dumped {
		return
	}
	a.dumped = true
	log.Debug().Str("agent", a.Name()).Msg(search.DotTree(a.tree.Root, 9))
}
