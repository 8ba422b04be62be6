/*
Package domain contains the core model and the pure selection logic of a skill tree.

A skill tree is a directed graph where an edge means "source is a prerequisite of
target". A node can be selected only when all of its prerequisites are selected, and
deselecting a node deselects everything that depends on it. This package is kept pure
and free of I/O: persistence and presentation live in adapters.

# Key Entities

  - Node: the start node or a skill (label, category, cost, canvas position).
  - Edge: a prerequisite relationship between two nodes.
  - Selection: the immutable set of selected node ids.
  - State: the graph plus the selection, with node flags kept projected.

# Operations

  - Eligible: whether a node may be selected right now.
  - Toggle: select an eligible node or deselect a node and its dependent closure.
  - Project: recompute the Selected/Locked flags shown to the user.
  - Reconcile: repair a selection that violates the prerequisite invariant.
*/
package domain
