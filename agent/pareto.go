package agent

import (
	"github.com/rs/zerolog/log"

	"ramcts/env"
	"ramcts/search"
)

// Pareto is frontier-tracking UCT: every node carries an estimate of its
// reward-versus-risk frontier, selection mixes two children to hit the
// risk target exactly, and descents re-target the remaining risk by
// derivative matching.
type Pareto[S comparable, A comparable] struct {
	params
	handler *env.Handler[S, A]
	data    *search.ParetoData[S, A]
	tree    *search.Tree[S, A, search.ParetoData[S, A], search.ParetoValue, search.ParetoValue]
	step    int
	rebuilt bool
	dumped  bool
}

func NewPareto[S comparable, A comparable](e env.Environment[S, A], options ...Option) *Pareto[S, A] {
	p := defaultParams()
	for _, option := range options {
		option(&p)
	}
	p.validate()

	a := &Pareto[S, A]{params: p, rebuilt: true}
	e.Reset()
	a.SetHandler(env.NewHandler(e))
	return a
}

func (a *Pareto[S, A]) SetHandler(h *env.Handler[S, A]) {
	a.handler = h
	a.data = &search.ParetoData[S, A]{
		RiskThd:       a.riskThd,
		SampleRiskThd: a.riskThd,
		Exploration:   a.exploration,
		MixK:          a.mixK,
		MixStep:       a.mixStep,
		Handler:       h,
		Rand:          a.rng,
	}
	a.tree = &search.Tree[S, A, search.ParetoData[S, A], search.ParetoValue, search.ParetoValue]{
		Handler:      h,
		Common:       a.data,
		Gamma:        a.gamma,
		SelectAction: search.SelectActionPareto[S, A],
		OnDescend:    search.DescendPareto[S, A],
		PropagateV:   search.PropagateParetoV[S, A],
		PropagateQ:   search.PropagateParetoQ[S, A],
		Rand:         a.rng,
	}
	a.tree.ResetRoot()
	a.rebuilt = true
}

func (a *Pareto[S, A]) Play() {
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
	act := search.SelectActionPareto[S, A](root, false)

	a.dumpTreeOnce()

	o := a.handler.PlayAction(act)
	log.Debug().Msgf("%s step %d: action=%v thd=%.3f r=%.3f p=%.3f done=%v",
		a.Name(), a.step, act, a.data.SampleRiskThd, o.Reward, o.Penalty, o.Done)

	root.Child(act).AddOutcome(o)
	a.collector.SetRootVisits(root.NumVisits)
	a.tree.Descend(act, o.State)
	a.step++
}

func (a *Pareto[S, A]) Reset() {
	log.Debug().Msgf("reset: %s", a.Name())
	a.handler.Reset()
	a.data.RiskThd = a.riskThd
	a.data.SampleRiskThd = a.riskThd
	a.tree.ResetRoot()
	a.step = 0
	a.rebuilt = true
}

// Handler exposes the bound environment handler.
func (a *Pareto[S, A]) Handler() *env.Handler[S, A] {
	return a.handler
}

func (a *Pareto[S, A]) Train() {}

func (a *Pareto[S, A]) IsTrainable() bool {
	return false
}

func (a *Pareto[S, A]) Name() string {
	return "pareto_uct"
}

func (a *Pareto[S, A]) dumpTreeOnce() {
	if a.dumped {
		return
	}
	a.dumped = true
	log.Debug().Str("agent", a.Name()).Msg(search.DotTree(a.tree.Root, 9))
}
