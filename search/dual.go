package search

import "math"

// SelectActionDual picks the argmax of the Lagrangian score
// E[r] - lambda * E[p], plus the exploration bonus when exploring.
func SelectActionDual[S comparable, A comparable](node *StateNode[S, A, DualData[S, A], PointValue, PointValue], explore bool) A {
	if len(node.Children) == 0 {
		panic("selecting on a node with no actions")
	}
	data := node.Common

	best := 0
	bestScore := math.Inf(-1)
	for i, an := range node.Children {
		score := an.Q.Reward - data.Lambda*an.Q.Penalty
		if explore {
			score += ucbBonus(data.Exploration, node.NumVisits, an.NumVisits)
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return node.Actions[best]
}
