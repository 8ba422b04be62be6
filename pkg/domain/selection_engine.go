package domain

// Toggle flips the selection state of nodeID and returns the resulting selection.
//
// Selecting an ineligible node is a silent no-op: the unchanged selection is
// returned. Deselecting a node removes its whole dependent closure, so nothing
// that relied on it stays selected. The input selection is never mutated.
func Toggle(nodeID string, sel Selection, edges []Edge, startID string) Selection {
	if sel.Has(nodeID) {
		return sel.Without(DependentClosure(nodeID, edges))
	}
	if !Eligible(nodeID, sel, edges, startID) {
		return sel
	}
	return sel.With(nodeID)
}

// DependentClosure returns nodeID plus every node reachable from it by following
// edges forward. Each node is visited at most once, so cycles terminate.
func DependentClosure(nodeID string, edges []Edge) Selection {
	outgoing := make(map[string][]string)
	for _, e := range edges {
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}

	closure := NewSelection(nodeID)
	queue := []string{nodeID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range outgoing[current] {
			if closure.Has(next) {
				continue
			}
			closure[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return closure
}

// Reconcile drops every selected id that is unknown to nodes or whose
// prerequisites are not all selected, repeating until nothing changes.
// It repairs selections restored from hand-edited or stale storage.
func Reconcile(sel Selection, nodes []Node, edges []Edge) Selection {
	startID := StartID(nodes)
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}

	out := NewSelection()
	for id := range sel {
		if known[id] {
			out[id] = struct{}{}
		}
	}

	// Each pass removes at least one id or stops, so this is bounded by len(out).
	for {
		var drop []string
		for id := range out {
			if !Eligible(id, out, edges, startID) {
				drop = append(drop, id)
			}
		}
		if len(drop) == 0 {
			return out
		}
		for _, id := range drop {
			delete(out, id)
		}
	}
}

// Project returns a copy of nodes with Selected and Locked recomputed from the
// selection and edges. All other fields pass through unchanged.
func Project(nodes []Node, sel Selection, edges []Edge) []Node {
	startID := StartID(nodes)
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Selected = sel.Has(n.ID)
		n.Locked = !Eligible(n.ID, sel, edges, startID)
		out[i] = n
	}
	return out
}

// Spent returns the skill points consumed by the selection.
func Spent(nodes []Node, sel Selection) int {
	total := 0
	for _, n := range nodes {
		if sel.Has(n.ID) {
			total += n.PointCost()
		}
	}
	return total
}
