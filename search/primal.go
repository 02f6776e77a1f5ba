package search

import "math"

// SelectActionPrimal picks by UCB1 over expected reward among the
// children whose expected penalty stays within the sampling threshold.
// With no admissible child it falls back to the least risky action,
// breaking ties by higher reward and then enumeration order.
func SelectActionPrimal[S comparable, A comparable](node *StateNode[S, A, PrimalData[S, A], PointValue, PointValue], explore bool) A {
	if len(node.Children) == 0 {
		panic("selecting on a node with no actions")
	}
	data := node.Common

	best := -1
	bestScore := math.Inf(-1)
	for i, an := range node.Children {
		if an.Q.Penalty > data.SampleRiskThd {
			continue
		}
		score := an.Q.Reward
		if explore {
			score += ucbBonus(data.Exploration, node.NumVisits, an.NumVisits)
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		best = 0
		for i, an := range node.Children[1:] {
			cur := node.Children[best]
			if an.Q.Penalty < cur.Q.Penalty ||
				(an.Q.Penalty == cur.Q.Penalty && an.Q.Reward > cur.Q.Reward) {
				best = i + 1
			}
		}
	}
	return node.Actions[best]
}
