package metrics

import (
	"time"
)

// DecisionMetric describes one real decision: how much search backed it
// and what it cost.
type DecisionMetric struct {
	Agent       string
	Step        int
	Simulations int
	RootVisits  int
	Duration    time.Duration
	TreeRebuilt bool
}

// EpisodeMetric summarizes a full episode of an agent against one
// environment.
type EpisodeMetric struct {
	Agent    string
	Steps    int
	Reward   float64
	Penalty  float64
	Duration time.Duration
}

type Collector interface {
	Start(agent string, step int)
	AddSimulation()
	SetRootVisits(n int)
	SetTreeRebuilt(value bool)
	Complete() DecisionMetric
}

type collector struct {
	agent       string
	step        int
	startTime   time.Time
	simulations int
	rootVisits  int
	treeRebuilt bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(agent string, step int) {
	m.agent = agent
	m.step = step
	m.startTime = time.Now()
	m.simulations = 0
	m.rootVisits = 0
	m.treeRebuilt = false
}

func (m *collector) AddSimulation() {
	m.simulations++
}

func (m *collector) SetRootVisits(n int) {
	m.rootVisits = n
}

func (m *collector) SetTreeRebuilt(value bool) {
	m.treeRebuilt = value
}

func (m *collector) Complete() DecisionMetric {
	return DecisionMetric{
		Agent:       m.agent,
		Step:        m.step,
		Simulations: m.simulations,
		RootVisits:  m.rootVisits,
		Duration:    time.Since(m.startTime),
		TreeRebuilt: m.treeRebuilt,
	}
}

type dummyCollector struct{}

// NewDummyCollector returns a collector that records nothing.
func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(agent string, step int) {}
func (m *dummyCollector) AddSimulation()               {}
func (m *dummyCollector) SetRootVisits(n int)          {}
func (m *dummyCollector) SetTreeRebuilt(value bool)    {}
func (m *dummyCollector) Complete() DecisionMetric     { return DecisionMetric{} }
