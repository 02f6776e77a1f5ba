package search

import (
	"fmt"
	"sort"
	"strings"
)

// curveResolution buckets observed risks so the support stays bounded
// while matching the mixing grid granularity.
const curveResolution = 0.01

type curvePoint struct {
	risk   float64
	reward float64
	n      int
}

// Curve estimates a node's reward-versus-risk frontier: a monotone
// non-decreasing function r(pi) giving the best expected reward seen at
// accepted risk pi. Samples are bucketed by risk into running means;
// queries read the upper monotone envelope of the buckets. The zero
// value is an empty curve that reads as identically zero.
type Curve struct {
	points []curvePoint
}

// Update folds one observed (reward, penalty) return into the frontier
// estimate. The curve stays monotone because queries always go through
// the envelope.
func (c *Curve) Update(r, p float64) {
	risk := bucket(p)
	i := sort.Search(len(c.points), func(i int) bool {
		return c.points[i].risk >= risk
	})
	if i < len(c.points) && c.points[i].risk == risk {
		pt := &c.points[i]
		pt.n++
		pt.reward += (r - pt.reward) / float64(pt.n)
		return
	}
	c.points = append(c.points, curvePoint{})
	copy(c.points[i+1:], c.points[i:])
	c.points[i] = curvePoint{risk: risk, reward: r, n: 1}
}

func bucket(p float64) float64 {
	if p < 0 {
		return 0
	}
	steps := int(p/curveResolution + 0.5)
	return float64(steps) * curveResolution
}

// envelope keeps, in ascending risk order, only the points that improve
// on every lower-risk point. The result is strictly increasing in both
// coordinates.
func (c *Curve) envelope() []curvePoint {
	out := make([]curvePoint, 0, len(c.points))
	best := 0.0
	for i, pt := range c.points {
		if i == 0 || pt.reward > best {
			out = append(out, pt)
			best = pt.reward
		}
	}
	return out
}

// RBounds returns the smallest and largest achievable reward on the
// frontier. An empty curve reads as (0, 0).
func (c *Curve) RBounds() (float64, float64) {
	e := c.envelope()
	if len(e) == 0 {
		return 0, 0
	}
	return e[0].reward, e[len(e)-1].reward
}

// Value evaluates the frontier at risk pi, interpolating linearly
// between envelope points and extending flat beyond either end.
func (c *Curve) Value(pi float64) float64 {
	e := c.envelope()
	if len(e) == 0 {
		return 0
	}
	if pi <= e[0].risk {
		return e[0].reward
	}
	last := e[len(e)-1]
	if pi >= last.risk {
		return last.reward
	}
	k := segmentAt(e, pi)
	a, b := e[k], e[k+1]
	t := (pi - a.risk) / (b.risk - a.risk)
	return a.reward + t*(b.reward-a.reward)
}

// Derivative returns the slope of the frontier at risk pi, taking the
// right-derivative at breakpoints. Beyond the last point the frontier is
// flat; before the first point it climbs at the first segment's slope.
func (c *Curve) Derivative(pi float64) float64 {
	e := c.envelope()
	if len(e) < 2 {
		return 0
	}
	if pi >= e[len(e)-1].risk {
		return 0
	}
	if pi < e[0].risk {
		return slope(e[0], e[1])
	}
	k := segmentAt(e, pi)
	return slope(e[k], e[k+1])
}

// InverseDerivative returns the smallest risk at which the frontier's
// slope has dropped to d or below, ties broken toward lower risk.
func (c *Curve) InverseDerivative(d float64) float64 {
	e := c.envelope()
	if len(e) == 0 {
		return 0
	}
	if len(e) == 1 {
		return e[0].risk
	}
	for k := 0; k+1 < len(e); k++ {
		if slope(e[k], e[k+1]) <= d {
			return e[k].risk
		}
	}
	return e[len(e)-1].risk
}

// segmentAt finds k such that pi lies in [e[k].risk, e[k+1].risk).
func segmentAt(e []curvePoint, pi float64) int {
	k := sort.Search(len(e), func(i int) bool {
		return e[i].risk > pi
	})
	if k == 0 {
		return 0
	}
	if k >= len(e) {
		return len(e) - 2
	}
	return k - 1
}

func slope(a, b curvePoint) float64 {
	return (b.reward - a.reward) / (b.risk - a.risk)
}

func (c *Curve) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, pt := range c.envelope() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "(%.3f,%.3f)", pt.risk, pt.reward)
	}
	sb.WriteByte(']')
	return sb.String()
}
