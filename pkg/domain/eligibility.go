package domain

// Prerequisites returns the distinct sources of every edge targeting nodeID,
// in edge order.
func Prerequisites(nodeID string, edges []Edge) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range edges {
		if e.Target != nodeID || seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		out = append(out, e.Source)
	}
	return out
}

// Eligible reports whether nodeID may be selected given the current selection.
//
// The start node, and any node without incoming edges, is always eligible.
// Otherwise every prerequisite must be the start node or already selected
// (AND semantics). startID may be empty when the graph has no start node.
func Eligible(nodeID string, sel Selection, edges []Edge, startID string) bool {
	if startID != "" && nodeID == startID {
		return true
	}
	for _, e := range edges {
		if e.Target != nodeID {
			continue
		}
		if startID != "" && e.Source == startID {
			continue
		}
		if !sel.Has(e.Source) {
			return false
		}
	}
	return true
}
