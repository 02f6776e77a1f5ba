package search

import (
	"fmt"

	"ramcts/env"
	"ramcts/utils"
)

// StateNode represents a visited environment state. It exclusively owns
// one ActionNode per enumerated action; Parent never owns.
type StateNode[S comparable, A comparable, D any, V any, Q any] struct {
	State     S
	Parent    *ActionNode[S, A, D, V, Q]
	Children  []*ActionNode[S, A, D, V, Q]
	Actions   []A
	NumVisits int
	V         V
	Terminal  bool
	Depth     int
	Common    *D
}

// Leaf reports whether the node has not been expanded yet.
func (sn *StateNode[S, A, D, V, Q]) Leaf() bool {
	return len(sn.Children) == 0
}

// Child returns the action node for a. Asking for an action that was
// never enumerated at this state is a caller bug.
func (sn *StateNode[S, A, D, V, Q]) Child(a A) *ActionNode[S, A, D, V, Q] {
	i := utils.FindIndex(sn.Actions, a)
	if i < 0 {
		panic(fmt.Sprintf("unknown action %v", a))
	}
	return sn.Children[i]
}

// ActionNode represents one action taken from its parent state. Realized
// outcomes are keyed by next state; the node exclusively owns them.
type ActionNode[S comparable, A comparable, D any, V any, Q any] struct {
	Action    A
	Parent    *StateNode[S, A, D, V, Q]
	Children  map[S]*StateNode[S, A, D, V, Q]
	NumVisits int
	Q         Q
	Common    *D

	rewardMean   float64
	penaltyMean  float64
	terminalMean float64
	numOutcomes  int
}

// AddOutcome records one observed outcome of playing this action,
// refreshing the running reward/penalty/terminality means and creating
// the child state node on first sight of o.State.
func (an *ActionNode[S, A, D, V, Q]) AddOutcome(o env.Outcome[S]) *StateNode[S, A, D, V, Q] {
	an.numOutcomes++
	n := float64(an.numOutcomes)
	an.rewardMean += (o.Reward - an.rewardMean) / n
	an.penaltyMean += (o.Penalty - an.penaltyMean) / n
	t := 0.0
	if o.Done {
		t = 1.0
	}
	an.terminalMean += (t - an.terminalMean) / n

	child, ok := an.Children[o.State]
	if !ok {
		depth := 0
		if an.Parent != nil {
			depth = an.Parent.Depth + 1
		}
		child = &StateNode[S, A, D, V, Q]{
			State:    o.State,
			Parent:   an,
			Terminal: o.Done,
			Depth:    depth,
			Common:   an.Common,
		}
		an.Children[o.State] = child
	} else {
		child.Terminal = o.Done
	}
	return child
}

// Child returns the realized child for next state s, or nil if the
// outcome was never observed through this node.
func (an *ActionNode[S, A, D, V, Q]) Child(s S) *StateNode[S, A, D, V, Q] {
	return an.Children[s]
}

// ExpectedReward is the running mean of observed immediate rewards.
func (an *ActionNode[S, A, D, V, Q]) ExpectedReward() float64 {
	return an.rewardMean
}

// ExpectedPenalty is the running mean of observed immediate penalties.
func (an *ActionNode[S, A, D, V, Q]) ExpectedPenalty() float64 {
	return an.penaltyMean
}

// TerminalRate is the running mean of the observed terminality flag.
func (an *ActionNode[S, A, D, V, Q]) TerminalRate() float64 {
	return an.terminalMean
}
