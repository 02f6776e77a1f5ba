package search

// PointValue is the scalar value payload of the primal and dual
// policies: running means of the discounted reward and penalty returns
// propagated through the node.
type PointValue struct {
	Reward  float64
	Penalty float64
	N       int
}

// Add folds one discounted (reward, penalty) return into the means.
func (v *PointValue) Add(r, p float64) {
	v.N++
	n := float64(v.N)
	v.Reward += (r - v.Reward) / n
	v.Penalty += (p - v.Penalty) / n
}

// PropagatePointV bumps the visit count and folds the discounted return
// into a state node's running means.
func PropagatePointV[S comparable, A comparable, D any](sn *StateNode[S, A, D, PointValue, PointValue], discR, discP float64) {
	sn.NumVisits++
	sn.V.Add(discR, discP)
}

// PropagatePointQ is the action-node counterpart of PropagatePointV.
func PropagatePointQ[S comparable, A comparable, D any](an *ActionNode[S, A, D, PointValue, PointValue], discR, discP float64) {
	an.NumVisits++
	an.Q.Add(discR, discP)
}
