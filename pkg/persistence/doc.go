/*
Package persistence saves and restores a skill tree through a ports.KVStore.

The tree is written under two independent keys, NodesKey and EdgesKey, each
holding a JSON array. Loading is forgiving: every key falls back to the default
tree on its own when it is absent, unreadable or empty, so a damaged value never
prevents the tree from opening.

Writes are usually routed through a Debouncer, which coalesces bursts of
changes into a single save of the latest state.
*/
package persistence
