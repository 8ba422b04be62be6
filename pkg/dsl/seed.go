package dsl

import (
	"fmt"

	"github.com/aretw0/skilltree/pkg/domain"
)

// SeedStartID is the id of the root node of the default tree.
const SeedStartID = "node"

// Seed returns the default skill tree used when nothing has been persisted yet.
// Each call returns a fresh graph with nothing selected.
//
// The tree has two branches under the start node (movement and combat) that
// join again at Aerial Parry, which requires both Wall Run and Parry Strike.
func Seed() domain.Graph {
	b := New()

	b.Start(SeedStartID).At(450, 0)
	b.Skill("node-1").
		Label("Double Jump").
		Describe("Allows the player to dash in any direction while airborne.").
		Category(domain.CategoryMovement).
		At(250, 100)
	b.Skill("node-5").
		Label("Safe Landing").
		Describe("Reduces fall damage and allows for a quick recovery upon landing.").
		Category(domain.CategoryMovement).
		At(-50, 300)
	b.Skill("node-2").
		Label("Wall Run").
		Describe("Enables the player to run along vertical surfaces for a short duration.").
		Category(domain.CategoryMovement).
		At(250, 300)
	b.Skill("node-3").
		Label("Heavy Attack").
		Describe("A powerful attack that launches enemies into the air.").
		Category(domain.CategoryCombat).
		At(650, 100)
	b.Skill("node-4").
		Label("Parry Strike").
		Describe("A perfectly timed block that stuns enemies and opens them to counterattacks.").
		Category(domain.CategoryCombat).
		At(650, 300)
	b.Skill("node-6").
		Label("Aerial Parry").
		Describe("Deflects attacks while running along a wall, sending the attacker flying.").
		Category(domain.CategoryCombat).
		Cost(2).
		At(450, 500)

	b.Edge("edge-1", SeedStartID, "node-1").
		Edge("edge-2", SeedStartID, "node-3").
		Edge("edge-3", "node-1", "node-5").
		Edge("edge-4", "node-1", "node-2").
		Edge("edge-5", "node-3", "node-4").
		Edge("edge-6", "node-2", "node-6").
		Edge("edge-7", "node-4", "node-6")

	g, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: default tree is invalid: %v", err))
	}
	return g
}
