package domain

// Categories accepted for new skills.
const (
	CategoryMovement = "movement"
	CategoryCombat   = "combat"
	CategoryUtility  = "utility"
)

// SkillInput carries the user-supplied fields of a new skill.
// Validation happens in the runtime before the skill enters the graph.
type SkillInput struct {
	Label       string   `json:"label" validate:"required,max=64"`
	Description string   `json:"description,omitempty" validate:"max=280"`
	Category    string   `json:"category,omitempty" validate:"omitempty,oneof=movement combat utility"`
	Cost        int      `json:"cost,omitempty" validate:"omitempty,min=1,max=10"`
	Position    Position `json:"position"`
}
