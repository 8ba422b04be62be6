package domain

// NodeKind distinguishes the root of the tree from regular skills.
type NodeKind string

const (
	// KindStart marks the root node. It is always eligible and always counts as
	// a satisfied prerequisite, even when no edge from it is present.
	KindStart NodeKind = "start"
	// KindSkill marks a regular, selectable skill.
	KindSkill NodeKind = "skill"
)

// DefaultCost is the skill point cost assigned to skills that do not declare one.
const DefaultCost = 1

// Position is the on-canvas location of a node. It is presentation data only and
// never influences eligibility or selection.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents a unit in the skill tree.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        NodeKind `json:"kind" yaml:"kind"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Cost        int      `json:"cost,omitempty" yaml:"cost,omitempty"`
	Position    Position `json:"position" yaml:"position"`

	// Selected is folded in from the selection set when projecting or persisting.
	Selected bool `json:"selected" yaml:"selected,omitempty"`

	// Locked is derived by Project and never persisted.
	Locked bool `json:"locked,omitempty" yaml:"-"`
}

// IsStart reports whether the node is the root of the tree.
func (n Node) IsStart() bool {
	return n.Kind == KindStart
}

// PointCost returns the skill point cost of the node. The start node is free.
func (n Node) PointCost() int {
	if n.IsStart() {
		return 0
	}
	if n.Cost <= 0 {
		return DefaultCost
	}
	return n.Cost
}

// Edge is a directed prerequisite relationship: Source must be selected before Target.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}
