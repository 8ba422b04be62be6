package domain

// StateDiff represents the visible changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	Selected   []string `json:"selected,omitempty"`
	Deselected []string `json:"deselected,omitempty"`
	Unlocked   []string `json:"unlocked,omitempty"`
	Locked     []string `json:"locked,omitempty"`
	AddedNodes []string `json:"added_nodes,omitempty"`
	AddedEdges []string `json:"added_edges,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// It returns nil when nothing visible changed.
func Diff(oldState, newState State) *StateDiff {
	diff := &StateDiff{
		Selected:   nilIfEmpty(newState.Selection.Without(oldState.Selection).IDs()),
		Deselected: nilIfEmpty(oldState.Selection.Without(newState.Selection).IDs()),
	}

	oldNodes := make(map[string]Node, len(oldState.Nodes))
	for _, n := range oldState.Nodes {
		oldNodes[n.ID] = n
	}
	for _, n := range newState.Nodes {
		prev, ok := oldNodes[n.ID]
		if !ok {
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
			continue
		}
		switch {
		case prev.Locked && !n.Locked:
			diff.Unlocked = append(diff.Unlocked, n.ID)
		case !prev.Locked && n.Locked:
			diff.Locked = append(diff.Locked, n.ID)
		}
	}

	oldEdges := make(map[string]bool, len(oldState.Edges))
	for _, e := range oldState.Edges {
		oldEdges[e.ID] = true
	}
	for _, e := range newState.Edges {
		if !oldEdges[e.ID] {
			diff.AddedEdges = append(diff.AddedEdges, e.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Selected) == 0 &&
		len(d.Deselected) == 0 &&
		len(d.Unlocked) == 0 &&
		len(d.Locked) == 0 &&
		len(d.AddedNodes) == 0 &&
		len(d.AddedEdges) == 0
}

func nilIfEmpty(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
