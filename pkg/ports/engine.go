package ports

import (
	"context"

	"github.com/aretw0/skilltree/pkg/domain"
)

// TreeService is the collaborator interface consumed by presentation surfaces
// (HTTP, MCP, CLI). Surfaces never touch the selection directly; every change
// goes through these methods so flags stay consistent.
type TreeService interface {
	// Click toggles a node and returns the re-projected nodes.
	// Clicks that cannot apply (locked, start or unknown node) change nothing.
	Click(ctx context.Context, nodeID string) []domain.Node

	// AddNode appends a skill, optionally wired to a prerequisite.
	AddNode(ctx context.Context, input domain.SkillInput, prerequisiteID string) (domain.Node, error)

	// Connect adds a prerequisite edge between two existing nodes.
	Connect(ctx context.Context, source, target string) (domain.Edge, error)

	// Options lists every node that may be offered as a prerequisite.
	Options() []domain.Node

	// Reset clears the selection.
	Reset(ctx context.Context) []domain.Node

	// State returns a snapshot of the current tree.
	State() domain.State

	// Points returns the spent and total skill points (total 0 means unlimited).
	Points() (spent, total int)

	// Flush persists any pending change immediately.
	Flush(ctx context.Context) error
}
