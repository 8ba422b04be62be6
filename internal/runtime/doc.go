// Package runtime implements the state transitions of a skill tree as a reducer:
// Engine.Apply takes the full state and an action and returns the next full state.
package runtime
