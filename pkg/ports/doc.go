/*
Package ports defines the driven ports (interfaces) of the skill tree engine.

These interfaces decouple the core logic from external implementations, allowing
the tree to be persisted to various backends and driven from several surfaces.

# Key Interfaces

  - KVStore: durable get/set string storage used by the persistence adapter.
  - DistributedLocker: serializes access to a tree across replicas.
  - TreeService: what HTTP, MCP and CLI surfaces call to mutate a tree.
*/
package ports
