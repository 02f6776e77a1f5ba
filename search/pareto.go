package search

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"ramcts/utils"
)

// ParetoValue is the value payload of the pareto policy: the node's
// frontier estimate and the risk level the node is currently held to.
type ParetoValue struct {
	Curve   Curve
	RiskThd float64
}

// SelectActionPareto mixes two children against the current sampling
// threshold: every unordered child pair is mixed to hit the target risk,
// the best pair is kept, and a Bernoulli draw realizes one endpoint. The
// realized endpoint's risk becomes the new sampling threshold.
func SelectActionPareto[S comparable, A comparable](node *StateNode[S, A, ParetoData[S, A], ParetoValue, ParetoValue], explore bool) A {
	if len(node.Children) == 0 {
		panic("selecting on a node with no actions")
	}
	data := node.Common
	target := data.SampleRiskThd

	if len(node.Children) == 1 {
		return node.Actions[0]
	}

	minRs := make([]float64, len(node.Children))
	maxRs := make([]float64, len(node.Children))
	for i, an := range node.Children {
		minRs[i], maxRs[i] = an.Q.Curve.RBounds()
	}
	minR, maxR := floats.Min(minRs), floats.Max(maxRs)
	if minR >= maxR {
		// Degenerate bounds would zero out every bonus; widen them.
		switch {
		case minR < 0:
			maxR = 0.9 * minR
		case minR > 0:
			maxR = 1.1 * minR
		default:
			maxR = 1
		}
	}
	span := maxR - minR

	bonus := make([]float64, len(node.Children))
	if explore {
		for i, an := range node.Children {
			bonus[i] = span * ucbBonus(data.Exploration, node.NumVisits, an.NumVisits)
		}
	}

	bestV := math.Inf(-1)
	var bestI, bestJ int
	var bestP1, bestProb1, bestP2 float64
	for i := range node.Children {
		for j := i + 1; j < len(node.Children); j++ {
			p1, prob1, p2, v := Mix(
				&node.Children[i].Q.Curve, &node.Children[j].Q.Curve,
				bonus[i], bonus[j],
				data.MixK, data.MixStep, target,
			)
			if v > bestV {
				bestV = v
				bestI, bestJ = i, j
				bestP1, bestProb1, bestP2 = p1, prob1, p2
			}
		}
	}

	idx, thd := bestJ, bestP2
	if data.Rand.Float64() < bestProb1 {
		idx, thd = bestI, bestP1
	}
	data.SampleRiskThd = utils.Clamp(thd, 0, 1)
	return node.Actions[idx]
}

// DescendPareto re-targets the sampling threshold across a descent by
// the equal-slope rule: the child is held to the risk at which its
// frontier has the same marginal reward-per-risk the parent's action
// frontier has at the committed threshold.
func DescendPareto[S comparable, A comparable](sn *StateNode[S, A, ParetoData[S, A], ParetoValue, ParetoValue], a A, an *ActionNode[S, A, ParetoData[S, A], ParetoValue, ParetoValue], s S, child *StateNode[S, A, ParetoData[S, A], ParetoValue, ParetoValue]) {
	data := an.Common
	an.Q.RiskThd = data.SampleRiskThd
	d := an.Q.Curve.Derivative(data.SampleRiskThd)
	next := utils.Clamp(child.V.Curve.InverseDerivative(d), 0, 1)
	child.V.RiskThd = next
	data.SampleRiskThd = next
}

// PropagateParetoV folds a discounted return into a state node's
// frontier.
func PropagateParetoV[S comparable, A comparable](sn *StateNode[S, A, ParetoData[S, A], ParetoValue, ParetoValue], discR, discP float64) {
	sn.NumVisits++
	sn.V.Curve.Update(discR, discP)
}

// PropagateParetoQ folds a discounted return into an action node's
// frontier.
func PropagateParetoQ[S comparable, A comparable](an *ActionNode[S, A, ParetoData[S, A], ParetoValue, ParetoValue], discR, discP float64) {
	an.NumVisits++
	an.Q.Curve.Update(discR, discP)
}
