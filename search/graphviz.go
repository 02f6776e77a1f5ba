package search

import (
	"fmt"
	"strings"
)

// DotTree renders the subtree below root as a graphviz digraph, down to
// maxDepth levels of state nodes. Advisory output for offline
// inspection of search behavior.
func DotTree[S comparable, A comparable, D any, V any, Q any](root *StateNode[S, A, D, V, Q], maxDepth int) string {
	var sb strings.Builder
	sb.WriteString("digraph search_tree {\n")
	sb.WriteString("\tnode [shape=box];\n")
	id := 0
	dotState(&sb, root, maxDepth, &id)
	sb.WriteString("}\n")
	return sb.String()
}

func dotState[S comparable, A comparable, D any, V any, Q any](sb *strings.Builder, sn *StateNode[S, A, D, V, Q], depth int, id *int) int {
	me := *id
	*id++
	label := fmt.Sprintf("s=%v\\nvisits=%d", sn.State, sn.NumVisits)
	if sn.Terminal {
		label += "\\nterminal"
	}
	fmt.Fprintf(sb, "\tn%d [label=\"%s\"];\n", me, label)
	if depth <= 0 {
		return me
	}
	for _, an := range sn.Children {
		anID := *id
		*id++
		fmt.Fprintf(sb, "\tn%d [shape=ellipse, label=\"a=%v\\nvisits=%d\\nr=%.3f p=%.3f\"];\n",
			anID, an.Action, an.NumVisits, an.ExpectedReward(), an.ExpectedPenalty())
		fmt.Fprintf(sb, "\tn%d -> n%d;\n", me, anID)
		for _, child := range an.Children {
			childID := dotState(sb, child, depth-1, id)
			fmt.Fprintf(sb, "\tn%d -> n%d;\n", anID, childID)
		}
	}
	return me
}
