package domain

import "errors"

// ErrKeyNotFound is returned by a KV store when a key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// ErrNodeNotFound is returned when an operation references an unknown node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when a node id is already taken.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrDuplicateEdge is returned when a prerequisite edge already exists.
var ErrDuplicateEdge = errors.New("duplicate edge")

// ErrCycle is returned when a prerequisite edge would close a cycle.
var ErrCycle = errors.New("prerequisite cycle")

// ErrInvalidSkill is returned when skill data fails validation.
var ErrInvalidSkill = errors.New("invalid skill")

// ErrTreeNotFound is returned when a named tree is not open in a session manager.
var ErrTreeNotFound = errors.New("tree not found")

// ErrInvalidGraph is returned when a tree definition is structurally unusable.
var ErrInvalidGraph = errors.New("invalid graph")
