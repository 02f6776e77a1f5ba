package search

import (
	"math"

	"golang.org/x/exp/rand"

	"ramcts/env"
)

// PrimalData is the shared data of the primal policy: a fixed episode
// risk threshold plus the per-simulation sampling threshold the
// selection rule enforces on the current path.
type PrimalData[S comparable, A comparable] struct {
	RiskThd       float64
	SampleRiskThd float64
	Exploration   float64
	Handler       *env.Handler[S, A]
}

// DualData is the shared data of the dual policy. Lambda is the Lagrange
// multiplier scalarizing penalty into reward, updated at the root after
// every simulation pass.
type DualData[S comparable, A comparable] struct {
	Lambda      float64
	RiskThd     float64
	Exploration float64
	LR          float64
	Handler     *env.Handler[S, A]
}

// ParetoData is the shared data of the pareto policy. SampleRiskThd is
// re-targeted on every descent by the equal-slope rule; Rand feeds the
// two-child Bernoulli mixing and must be injected for reproducibility.
type ParetoData[S comparable, A comparable] struct {
	RiskThd       float64
	SampleRiskThd float64
	Exploration   float64
	MixK          int
	MixStep       float64
	Handler       *env.Handler[S, A]
	Rand          *rand.Rand
}

const visitEps = 1e-4

// ucbBonus is the exploration term c * sqrt(log(N+1) / (n + eps)).
func ucbBonus(c float64, parentVisits, childVisits int) float64 {
	return c * math.Sqrt(math.Log(float64(parentVisits)+1)/(float64(childVisits)+visitEps))
}
