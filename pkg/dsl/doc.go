/*
Package dsl provides a Go DSL for constructing skill trees and the default tree.

Trees can be declared in code with a fluent builder, or loaded from YAML/JSON
definition files. Either way the result is validated before use: duplicate ids,
edges to unknown nodes, more than one start node and prerequisite cycles are
all rejected.

Example usage:

	b := dsl.New()
	b.Start("root")
	b.Skill("dash").Label("Dash").Category("movement").Requires("root")
	b.Skill("blink").Label("Blink").Cost(3).Requires("dash")

	graph, err := b.Build()
	if err != nil {
		return err
	}
*/
package dsl
