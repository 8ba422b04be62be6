package dsl

import "github.com/aretw0/skilltree/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Label sets the display name of the node.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	return n
}

// Describe sets the long description of the node.
func (n *NodeBuilder) Describe(text string) *NodeBuilder {
	n.node.Description = text
	return n
}

// Category sets the grouping of the skill (movement, combat, utility).
func (n *NodeBuilder) Category(category string) *NodeBuilder {
	n.node.Category = category
	return n
}

// Cost sets the skill point cost. Zero means domain.DefaultCost.
func (n *NodeBuilder) Cost(points int) *NodeBuilder {
	n.node.Cost = points
	return n
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Requires adds an edge from each prerequisite to this node.
// Edge ids are generated as "edge-N".
func (n *NodeBuilder) Requires(prerequisites ...string) *NodeBuilder {
	for _, p := range prerequisites {
		n.builder.Edge(n.builder.nextEdgeID(), p, n.node.ID)
	}
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
