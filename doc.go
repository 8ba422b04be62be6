/*
Package skilltree is a skill tree engine: a directed graph of unlockable skills
where a skill can be picked only once all of its prerequisites are picked, and
dropping a skill drops everything built on top of it.

The Tree type is the entry point for applications. It restores a tree from any
key/value store, applies clicks and edits through a reducer, and saves changes
in the background after a short quiet period.

	store := memory.NewStore()
	tree, err := skilltree.Open(ctx, store, skilltree.WithBudget(8))
	if err != nil {
		return err
	}
	defer tree.Close(ctx)

	tree.Click(ctx, "node-1") // Double Jump
	tree.Click(ctx, "node-2") // Wall Run, unlocked by Double Jump

# Architecture

The module follows a hexagonal layout:

  - pkg/domain: the graph model and the pure selection rules.
  - pkg/ports: the store and locker interfaces plus their contract tests.
  - pkg/adapters: memory, file, Redis and SQLite stores; HTTP and MCP servers.
  - pkg/persistence: the two-key JSON format, load fallbacks and the save debouncer.
  - pkg/session: one Tree per id over a shared store, with optional distributed locks.
  - pkg/dsl: the tree builder, YAML definitions and the default tree.
*/
package skilltree
