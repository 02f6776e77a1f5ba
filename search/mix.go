package search

import (
	"math"

	"ramcts/utils"
)

// Mix finds the best randomization between two children that hits the
// target risk: play curve a at risk p1 with probability prob1 and curve
// b at risk p2 otherwise, with prob1*p1 + (1-prob1)*p2 = target
// whenever the target is straddled. Candidates for each curve are its
// frontier breakpoints plus k grid steps of the given size around the
// target, clamped into the curve's support. When no candidate pair
// straddles the target the weight saturates and the mixture collapses
// toward the least-overshooting pure child. The returned v is the best
// mixture of frontier values plus the per-child exploration bonuses; the
// first candidate encountered wins ties.
func Mix(a, b *Curve, bonusA, bonusB float64, k int, step, target float64) (p1, prob1, p2, v float64) {
	candA := mixCandidates(a, target, k, step)
	candB := mixCandidates(b, target, k, step)

	v = math.Inf(-1)
	for _, c1 := range candA {
		for _, c2 := range candB {
			var w float64
			if c1 == c2 {
				// Same risk on both curves: the mixture collapses to the
				// better pure child.
				w = 0
				if a.Value(c1)+bonusA >= b.Value(c2)+bonusB {
					w = 1
				}
			} else {
				w = utils.Clamp((c2-target)/(c2-c1), 0, 1)
			}
			cv := w*(a.Value(c1)+bonusA) + (1-w)*(b.Value(c2)+bonusB)
			if cv > v {
				p1, prob1, p2, v = c1, w, c2, cv
			}
		}
	}
	return p1, prob1, p2, v
}

// mixCandidates lists the risks worth playing a curve at: every frontier
// breakpoint plus grid steps around the target, all within the curve's
// support so values stay honest.
func mixCandidates(c *Curve, target float64, k int, step float64) []float64 {
	e := c.envelope()
	if len(e) == 0 {
		return []float64{utils.Clamp(target, 0, 1)}
	}
	lo, hi := e[0].risk, e[len(e)-1].risk

	out := make([]float64, 0, len(e)+2*k+2)
	seen := make(map[float64]bool, cap(out))
	add := func(pi float64) {
		pi = utils.Clamp(pi, lo, hi)
		if !seen[pi] {
			seen[pi] = true
			out = append(out, pi)
		}
	}
	for _, pt := range e {
		add(pt.risk)
	}
	for i := 0; i <= k; i++ {
		add(target - float64(i)*step)
		add(target + float64(i)*step)
	}
	return out
}
