package domain

// Graph holds the structural part of a skill tree.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// StartID returns the id of the first start node, or "" if the graph has none.
func (g Graph) StartID() string {
	return StartID(g.Nodes)
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasEdge reports whether an edge source->target already exists.
func (g Graph) HasEdge(source, target string) bool {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// Clone returns a copy whose slices can be modified independently.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// State is the full session snapshot: the graph plus the current selection.
// Nodes in a State are kept projected, so their Selected/Locked flags reflect
// Selection at all times.
type State struct {
	Graph
	Selection Selection `json:"selection"`
}

// NewState builds a projected state from a graph and a selection.
func NewState(g Graph, sel Selection) State {
	if sel == nil {
		sel = NewSelection()
	}
	g = g.Clone()
	g.Nodes = Project(g.Nodes, sel, g.Edges)
	return State{Graph: g, Selection: sel}
}

// Snapshot creates a deep copy of the state.
func (s State) Snapshot() State {
	return State{
		Graph:     s.Graph.Clone(),
		Selection: s.Selection.Clone(),
	}
}

// StartID returns the id of the first node of kind start in nodes.
func StartID(nodes []Node) string {
	for _, n := range nodes {
		if n.IsStart() {
			return n.ID
		}
	}
	return ""
}
