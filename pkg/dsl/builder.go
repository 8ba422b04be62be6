package dsl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/skilltree/pkg/domain"
)

// Builder manages the graph construction.
// Nodes and edges keep their declaration order in the built graph.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
	edges []domain.Edge
	errs  []error
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Start declares the root node of the tree.
func (b *Builder) Start(id string) *NodeBuilder {
	return b.add(id, domain.KindStart)
}

// Skill declares a selectable skill node.
func (b *Builder) Skill(id string) *NodeBuilder {
	return b.add(id, domain.KindSkill)
}

func (b *Builder) add(id string, kind domain.NodeKind) *NodeBuilder {
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Kind: kind},
		builder: b,
	}
	if id == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: empty node id", domain.ErrInvalidGraph))
		return nb
	}
	if _, ok := b.nodes[id]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", domain.ErrDuplicateNode, id))
		return nb
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Edge declares a prerequisite edge with an explicit id.
func (b *Builder) Edge(id, source, target string) *Builder {
	b.edges = append(b.edges, domain.Edge{ID: id, Source: source, Target: target})
	return b
}

// nextEdgeID returns the first free "edge-N" id.
func (b *Builder) nextEdgeID() string {
	taken := make(map[string]bool, len(b.edges))
	for _, e := range b.edges {
		taken[e.ID] = true
	}
	for n := len(b.edges) + 1; ; n++ {
		id := "edge-" + strconv.Itoa(n)
		if !taken[id] {
			return id
		}
	}
}

// Build validates the declarations and returns the graph.
// All problems found are reported together.
func (b *Builder) Build() (domain.Graph, error) {
	errs := append([]error(nil), b.errs...)

	nodes := make([]domain.Node, 0, len(b.order))
	var startID string
	for _, id := range b.order {
		n := b.nodes[id].node
		if n.IsStart() {
			if startID != "" {
				errs = append(errs, fmt.Errorf("%w: more than one start node (%s, %s)", domain.ErrInvalidGraph, startID, id))
			} else {
				startID = id
			}
		}
		nodes = append(nodes, n)
	}

	edgeIDs := make(map[string]bool, len(b.edges))
	pairs := make(map[[2]string]bool, len(b.edges))
	for _, e := range b.edges {
		switch {
		case e.ID == "":
			errs = append(errs, fmt.Errorf("%w: edge %s->%s has no id", domain.ErrInvalidGraph, e.Source, e.Target))
		case edgeIDs[e.ID]:
			errs = append(errs, fmt.Errorf("%w: id %s", domain.ErrDuplicateEdge, e.ID))
		}
		edgeIDs[e.ID] = true

		if _, ok := b.nodes[e.Source]; !ok {
			errs = append(errs, fmt.Errorf("edge %s: source %q: %w", e.ID, e.Source, domain.ErrNodeNotFound))
		}
		if _, ok := b.nodes[e.Target]; !ok {
			errs = append(errs, fmt.Errorf("edge %s: target %q: %w", e.ID, e.Target, domain.ErrNodeNotFound))
		}
		pair := [2]string{e.Source, e.Target}
		if pairs[pair] {
			errs = append(errs, fmt.Errorf("%w: %s->%s", domain.ErrDuplicateEdge, e.Source, e.Target))
		}
		pairs[pair] = true
	}

	if stuck := domain.FindCycle(b.edges); stuck != nil {
		errs = append(errs, fmt.Errorf("%w: involving %v", domain.ErrCycle, stuck))
	}

	if err := errors.Join(errs...); err != nil {
		return domain.Graph{}, err
	}

	edges := make([]domain.Edge, len(b.edges))
	copy(edges, b.edges)
	return domain.Graph{Nodes: nodes, Edges: edges}, nil
}
