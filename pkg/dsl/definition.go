package dsl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/skilltree/pkg/domain"
)

// Definition is the on-disk form of a tree.
//
//	nodes:
//	  - id: root
//	    kind: start
//	  - id: dash
//	    label: Dash
//	    category: movement
//	    requires: [root]
//	edges:
//	  - {id: extra, source: dash, target: blink}
type Definition struct {
	Nodes []NodeDefinition `yaml:"nodes"`
	Edges []domain.Edge    `yaml:"edges"`
}

// NodeDefinition describes one node. Kind defaults to skill.
type NodeDefinition struct {
	ID          string          `yaml:"id"`
	Kind        domain.NodeKind `yaml:"kind"`
	Label       string          `yaml:"label"`
	Description string          `yaml:"description"`
	Category    string          `yaml:"category"`
	Cost        int             `yaml:"cost"`
	Position    domain.Position `yaml:"position"`
	Requires    []string        `yaml:"requires"`
}

// Parse reads a YAML tree definition. JSON documents are accepted too.
func Parse(data []byte) (domain.Graph, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return domain.Graph{}, fmt.Errorf("failed to parse tree definition: %w", err)
	}
	return def.Build()
}

// LoadFile reads and builds the tree definition stored at path.
func LoadFile(path string) (domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("failed to read tree definition: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Build runs the definition through a Builder.
func (d Definition) Build() (domain.Graph, error) {
	b := New()
	// Explicit edges go first so their ids are never shadowed by generated ones.
	for _, e := range d.Edges {
		b.Edge(e.ID, e.Source, e.Target)
	}
	for _, n := range d.Nodes {
		var nb *NodeBuilder
		switch n.Kind {
		case domain.KindStart:
			nb = b.Start(n.ID)
		case "", domain.KindSkill:
			nb = b.Skill(n.ID)
		default:
			return domain.Graph{}, fmt.Errorf("%w: node %s has unknown kind %q", domain.ErrInvalidGraph, n.ID, n.Kind)
		}
		nb.Label(n.Label).
			Describe(n.Description).
			Category(n.Category).
			Cost(n.Cost).
			At(n.Position.X, n.Position.Y).
			Requires(n.Requires...)
	}
	return b.Build()
}
