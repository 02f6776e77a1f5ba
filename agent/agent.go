package agent

import (
	"golang.org/x/exp/rand"

	"ramcts/env"
	"ramcts/metrics"
)

// Agent advances one real environment step per Play call, backed by its
// own search tree. Agents in this family do not learn across episodes.
type Agent[S comparable, A comparable] interface {
	Play()
	Reset()
	Train()
	IsTrainable() bool
	Name() string
	SetHandler(h *env.Handler[S, A])
	Handler() *env.Handler[S, A]
}

type params struct {
	maxDepth    int
	numSim      int
	riskThd     float64
	gamma       float64
	exploration float64
	lr          float64
	mixK        int
	mixStep     float64
	rng         *rand.Rand
	collector   metrics.Collector
}

func defaultParams() params {
	return params{
		maxDepth:    100,
		numSim:      100,
		riskThd:     0.1,
		gamma:       0.99,
		exploration: 5.0,
		lr:          1.0,
		mixK:        10,
		mixStep:     0.01,
		rng:         rand.New(rand.NewSource(1)),
		collector:   metrics.NewDummyCollector(),
	}
}

func (p *params) validate() {
	if p.maxDepth <= 0 {
		panic("max depth must be positive")
	}
	if p.numSim < 0 {
		panic("number of simulations must be non-negative")
	}
	if p.riskThd < 0 || p.riskThd > 1 {
		panic("risk threshold must be in [0, 1]")
	}
	if p.gamma <= 0 || p.gamma > 1 {
		panic("gamma must be in (0, 1]")
	}
	if p.exploration < 0 {
		panic("exploration constant must be non-negative")
	}
	if p.lr <= 0 {
		panic("learning rate must be positive")
	}
	if p.mixK <= 0 || p.mixStep <= 0 {
		panic("mix grid parameters must be positive")
	}
	if p.rng == nil {
		panic("missing random source")
	}
	if p.collector == nil {
		panic("missing metrics collector")
	}
}

type Option func(*params)

func WithMaxDepth(depth int) Option {
	return func(p *params) {
		p.maxDepth = depth
	}
}

func WithSimulations(numSim int) Option {
	return func(p *params) {
		p.numSim = numSim
	}
}

func WithRiskThreshold(thd float64) Option {
	return func(p *params) {
		p.riskThd = thd
	}
}

func WithGamma(gamma float64) Option {
	return func(p *params) {
		p.gamma = gamma
	}
}

func WithExploration(c float64) Option {
	return func(p *params) {
		p.exploration = c
	}
}

// WithLearningRate sets the multiplier step size. Dual only.
func WithLearningRate(lr float64) Option {
	return func(p *params) {
		p.lr = lr
	}
}

// WithMix sets the mixing grid: k candidate steps of the given size
// around the risk target. Pareto only.
func WithMix(k int, step float64) Option {
	return func(p *params) {
		p.mixK = k
		p.mixStep = step
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(p *params) {
		p.rng = rng
	}
}

func WithSeed(seed uint64) Option {
	return func(p *params) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(p *params) {
		p.collector = c
	}
}
