package search

import (
	"fmt"

	"golang.org/x/exp/rand"

	"ramcts/env"
)

// Tree owns the search tree for one agent. It is parameterized by the
// state type S, the action type A, the policy's shared data D, and the
// state/action value payloads V and Q. The four policy hooks decide how
// actions are scored, how the risk target moves during a descent, and
// how values reduce during propagation.
type Tree[S comparable, A comparable, D any, V any, Q any] struct {
	Root    *StateNode[S, A, D, V, Q]
	Handler *env.Handler[S, A]
	Common  *D
	Gamma   float64

	SelectAction func(node *StateNode[S, A, D, V, Q], explore bool) A
	OnDescend    func(sn *StateNode[S, A, D, V, Q], a A, an *ActionNode[S, A, D, V, Q], s S, child *StateNode[S, A, D, V, Q])
	PropagateV   func(sn *StateNode[S, A, D, V, Q], discR, discP float64)
	PropagateQ   func(an *ActionNode[S, A, D, V, Q], discR, discP float64)

	Rand *rand.Rand
}

// ResetRoot discards the whole tree and re-roots at the environment's
// current state.
func (t *Tree[S, A, D, V, Q]) ResetRoot() {
	t.Root = &StateNode[S, A, D, V, Q]{
		State:    t.Handler.CurrentState(),
		Terminal: t.Handler.IsOver(),
		Common:   t.Common,
	}
}

// Select walks from the root to a leaf, playing each selected action as
// a simulation through the handler and attaching every observed outcome
// on the way down. The simulation session stays open on return so the
// caller can roll out from the leaf state before resetting.
func (t *Tree[S, A, D, V, Q]) Select(maxDepth int) *StateNode[S, A, D, V, Q] {
	node := t.Root
	depth := 0
	for !node.Leaf() && !node.Terminal && depth < maxDepth {
		a := t.SelectAction(node, true)
		an := node.Child(a)
		o := t.Handler.SimAction(a)
		child := an.AddOutcome(o)
		if t.OnDescend != nil {
			t.OnDescend(node, a, an, o.State, child)
		}
		node = child
		depth++
	}
	return node
}

// Expand allocates one action child per possible action at the leaf.
// Outcomes are not realized; value payloads start at their zero value.
func (t *Tree[S, A, D, V, Q]) Expand(leaf *StateNode[S, A, D, V, Q]) {
	if leaf.Terminal || !leaf.Leaf() {
		return
	}
	actions := t.Handler.PossibleActions()
	leaf.Actions = make([]A, len(actions))
	copy(leaf.Actions, actions)
	leaf.Children = make([]*ActionNode[S, A, D, V, Q], len(actions))
	for i, a := range actions {
		leaf.Children[i] = &ActionNode[S, A, D, V, Q]{
			Action:   a,
			Parent:   leaf,
			Children: make(map[S]*StateNode[S, A, D, V, Q]),
			Common:   t.Common,
		}
	}
}

// Rollout estimates the leaf's value by playing uniformly random actions
// through the open simulation session, up to maxDepth total steps from
// the root. Returns the discounted reward and penalty sums seen from the
// leaf; terminal leaves evaluate to zero.
func (t *Tree[S, A, D, V, Q]) Rollout(leaf *StateNode[S, A, D, V, Q], maxDepth int) (float64, float64) {
	if leaf.Terminal {
		return 0, 0
	}
	depth := 0
	for sn := leaf; sn.Parent != nil; sn = sn.Parent.Parent {
		depth++
	}

	var discR, discP float64
	gammaPow := 1.0
	for d := depth; d < maxDepth; d++ {
		n := t.Handler.NumActions()
		if n == 0 {
			break
		}
		a := t.Handler.GetAction(t.Rand.Intn(n))
		o := t.Handler.SimAction(a)
		discR += gammaPow * o.Reward
		discP += gammaPow * o.Penalty
		gammaPow *= t.Gamma
		if o.Done {
			break
		}
	}
	return discR, discP
}

// Propagate walks the leaf's lineage back to the root, folding the
// rollout estimate into every value payload on the path. Discounting is
// applied per level: the value handed to a node is the running mean of
// the immediate reward/penalty observed on the action below it plus
// gamma times the value below.
func (t *Tree[S, A, D, V, Q]) Propagate(leaf *StateNode[S, A, D, V, Q], discR, discP float64) {
	sn := leaf
	t.PropagateV(sn, discR, discP)
	an := sn.Parent
	for an != nil {
		discR = an.ExpectedReward() + t.Gamma*discR
		discP = an.ExpectedPenalty() + t.Gamma*discP
		t.PropagateQ(an, discR, discP)
		sn = an.Parent
		t.PropagateV(sn, discR, discP)
		an = sn.Parent
	}
}

// Descend commits a real step: the child reached by a and the realized
// next state s becomes the new root. The old root and all sibling
// subtrees are dropped in one pass. The caller must have attached the
// observed outcome first so the child exists.
func (t *Tree[S, A, D, V, Q]) Descend(a A, s S) {
	an := t.Root.Child(a)
	child := an.Child(s)
	if child == nil {
		panic(fmt.Sprintf("descending into unobserved state %v", s))
	}
	if t.OnDescend != nil {
		t.OnDescend(t.Root, a, an, s, child)
	}

	old := t.Root
	t.Root = child
	child.Parent = nil
	old.Children = nil
	old.Actions = nil
}
