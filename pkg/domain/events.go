package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventToggle       EventType = "toggle"
	EventSkillAdded   EventType = "skill_added"
	EventEdgeAdded    EventType = "edge_added"
	EventSaved        EventType = "saved"
	EventLoadFallback EventType = "load_fallback"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ToggleEvent describes the outcome of a click on a node.
type ToggleEvent struct {
	EventBase
	NodeID string `json:"node_id"`
	// Applied is false when the click was ignored (locked node, budget, start node).
	Applied bool `json:"applied"`
	// Selected is the node's state after the click.
	Selected bool `json:"selected"`
	// Cascaded lists the dependents removed along with the node on deselection.
	Cascaded []string `json:"cascaded,omitempty"`
}

// GraphEvent describes a structural change to the tree.
type GraphEvent struct {
	EventBase
	NodeID string `json:"node_id,omitempty"`
	EdgeID string `json:"edge_id,omitempty"`
}

// StoreEvent describes a persistence round-trip.
type StoreEvent struct {
	EventBase
	Key   string `json:"key,omitempty"`
	Error error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any of them may be nil.
type LifecycleHooks struct {
	OnToggle       func(context.Context, *ToggleEvent)
	OnGraphChange  func(context.Context, *GraphEvent)
	OnSave         func(context.Context, *StoreEvent)
	OnLoadFallback func(context.Context, *StoreEvent)
}
