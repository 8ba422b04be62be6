package runtime

import "github.com/aretw0/skilltree/pkg/domain"

// Action is a request to change the tree. Engine.Apply is the only place
// actions are interpreted.
type Action interface {
	actionName() string
}

// Toggle selects or deselects a node.
type Toggle struct {
	NodeID string
}

// AddSkill appends a new skill, optionally depending on an existing node.
type AddSkill struct {
	Input          domain.SkillInput
	PrerequisiteID string
}

// Connect adds a prerequisite edge between two existing nodes.
type Connect struct {
	Source string
	Target string
}

// Reset clears the selection.
type Reset struct{}

func (Toggle) actionName() string   { return "toggle" }
func (AddSkill) actionName() string { return "add_skill" }
func (Connect) actionName() string  { return "connect" }
func (Reset) actionName() string    { return "reset" }
