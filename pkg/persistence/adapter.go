package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/dsl"
	"github.com/aretw0/skilltree/pkg/ports"
)

// Storage keys of the two halves of a tree.
const (
	NodesKey = "skillTreeNodes"
	EdgesKey = "skillTreeEdges"
)

// Adapter converts between domain.State and the stored JSON documents.
type Adapter struct {
	store    ports.KVStore
	logger   *slog.Logger
	defaults func() domain.Graph
	hooks    domain.LifecycleHooks
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger configures the logger used for fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithDefaults replaces the default tree used when stored data is unusable.
// fn is called on every fallback and must return a fresh graph.
func WithDefaults(fn func() domain.Graph) Option {
	return func(a *Adapter) {
		a.defaults = fn
	}
}

// WithHooks registers callbacks for saves and load fallbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Adapter) {
		a.hooks = hooks
	}
}

// New creates an Adapter over store.
func New(store ports.KVStore, opts ...Option) *Adapter {
	a := &Adapter{
		store:    store,
		logger:   logging.NewNop(),
		defaults: dsl.Seed,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Save writes the nodes, with Selected folded in from the selection and Locked
// cleared, and the edges. Both keys are attempted even if the first write fails.
func (a *Adapter) Save(ctx context.Context, state domain.State) error {
	nodes := make([]domain.Node, len(state.Nodes))
	for i, n := range state.Nodes {
		n.Selected = state.Selection.Has(n.ID)
		n.Locked = false
		nodes[i] = n
	}
	edges := state.Edges
	if edges == nil {
		edges = []domain.Edge{}
	}

	return errors.Join(
		a.put(ctx, NodesKey, nodes),
		a.put(ctx, EdgesKey, edges),
	)
}

func (a *Adapter) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err == nil {
		err = a.store.Set(ctx, key, string(data))
	}
	if err != nil {
		err = fmt.Errorf("failed to save %s: %w", key, err)
	}
	if a.hooks.OnSave != nil {
		a.hooks.OnSave(ctx, &domain.StoreEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventSaved},
			Key:       key,
			Error:     err,
		})
	}
	return err
}

// Load reads the stored graph. Each key independently falls back to the default
// tree when it is absent, unreadable, malformed, not an array, or empty.
// Load never fails.
func (a *Adapter) Load(ctx context.Context) domain.Graph {
	var g domain.Graph
	var defaults *domain.Graph
	fallback := func() domain.Graph {
		if defaults == nil {
			d := a.defaults()
			defaults = &d
		}
		return *defaults
	}

	nodes, nodesErr := a.loadNodes(ctx)
	if nodesErr != nil {
		a.fallback(ctx, NodesKey, nodesErr)
		nodes = fallback().Nodes
	}
	edges, edgesErr := a.loadEdges(ctx)
	if edgesErr != nil {
		a.fallback(ctx, EdgesKey, edgesErr)
		edges = fallback().Edges
	}
	if nodesErr == nil && edgesErr == nil {
		edges = a.dropDangling(nodes, edges)
	}

	g.Nodes = nodes
	g.Edges = edges
	return g.Clone()
}

// Restore loads the graph, rebuilds the selection from the stored flags and drops
// any selected node whose prerequisites are no longer all selected.
func (a *Adapter) Restore(ctx context.Context) domain.State {
	g := a.Load(ctx)
	stored := domain.SelectionFromNodes(g.Nodes)
	sel := domain.Reconcile(stored, g.Nodes, g.Edges)
	if dropped := stored.Without(sel); dropped.Len() > 0 {
		a.logger.Warn("dropped stale selections on restore", "node_ids", dropped.IDs())
	}
	return domain.NewState(g, sel)
}

var errEmpty = errors.New("empty or null value")

func (a *Adapter) loadNodes(ctx context.Context) ([]domain.Node, error) {
	var nodes []domain.Node
	if err := a.get(ctx, NodesKey, &nodes); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errEmpty
	}

	seen := make(map[string]bool, len(nodes))
	starts := 0
	for i := range nodes {
		n := &nodes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("node at index %d has no id", i)
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateNode, n.ID)
		}
		seen[n.ID] = true
		if n.Kind == "" {
			n.Kind = domain.KindSkill
		}
		if n.Kind == domain.KindStart {
			starts++
		}
		n.Locked = false
	}
	if starts > 1 {
		return nil, fmt.Errorf("%w: %d start nodes", domain.ErrInvalidGraph, starts)
	}
	return nodes, nil
}

// dropDangling removes stored edges whose source or target is not a stored
// node. It only runs when both keys were read from the store.
func (a *Adapter) dropDangling(nodes []domain.Node, edges []domain.Edge) []domain.Edge {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	kept := make([]domain.Edge, 0, len(edges))
	var dropped []string
	for _, e := range edges {
		if ids[e.Source] && ids[e.Target] {
			kept = append(kept, e)
			continue
		}
		dropped = append(dropped, e.ID)
	}
	if len(dropped) > 0 {
		a.logger.Warn("dropped edges with unknown endpoints", "key", EdgesKey, "edge_ids", dropped)
	}
	return kept
}

func (a *Adapter) loadEdges(ctx context.Context) ([]domain.Edge, error) {
	var edges []domain.Edge
	if err := a.get(ctx, EdgesKey, &edges); err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, errEmpty
	}
	for i, e := range edges {
		if e.ID == "" || e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("edge at index %d is incomplete", i)
		}
	}
	return edges, nil
}

func (a *Adapter) get(ctx context.Context, key string, v any) error {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("malformed value: %w", err)
	}
	return nil
}

func (a *Adapter) fallback(ctx context.Context, key string, err error) {
	if errors.Is(err, domain.ErrKeyNotFound) {
		a.logger.Debug("no stored value, using default", "key", key)
	} else {
		a.logger.Warn("unusable stored value, using default", "key", key, "err", err)
	}
	if a.hooks.OnLoadFallback != nil {
		a.hooks.OnLoadFallback(ctx, &domain.StoreEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLoadFallback},
			Key:       key,
			Error:     err,
		})
	}
}
