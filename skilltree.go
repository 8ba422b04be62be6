package skilltree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/internal/runtime"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/dsl"
	"github.com/aretw0/skilltree/pkg/persistence"
	"github.com/aretw0/skilltree/pkg/ports"
)

// ErrClosed is returned by mutations on a closed Tree.
var ErrClosed = errors.New("tree is closed")

// Tree is a live skill tree bound to a store. It is safe for concurrent use;
// state transitions are serialized.
type Tree struct {
	mu     sync.Mutex
	state  domain.State
	closed bool

	engine    *runtime.Engine
	adapter   *persistence.Adapter
	debouncer *persistence.Debouncer
	logger    *slog.Logger
}

type options struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	debounce time.Duration
	budget   int
	ids      runtime.IDGenerator
	seed     func() domain.Graph
}

// Option configures a Tree.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithDebounce sets the quiet period before changes are saved (default 1s).
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithBudget limits the skill points that can be spent (0 = unlimited).
func WithBudget(points int) Option {
	return func(o *options) {
		o.budget = points
	}
}

// WithUUIDs makes new nodes and edges use random ids instead of "node-N".
func WithUUIDs() Option {
	return func(o *options) {
		o.ids = runtime.UUIDs{}
	}
}

// WithSeed replaces the default tree used when the store holds nothing usable.
func WithSeed(g domain.Graph) Option {
	return func(o *options) {
		o.seed = func() domain.Graph { return g.Clone() }
	}
}

// Open restores the tree saved in store, falling back to the default tree for
// anything missing or damaged.
func Open(ctx context.Context, store ports.KVStore, opts ...Option) (*Tree, error) {
	if store == nil {
		return nil, fmt.Errorf("skilltree: nil store")
	}

	o := options{
		logger: logging.NewNop(),
		ids:    runtime.SequentialIDs{},
		seed:   dsl.Seed,
	}
	for _, opt := range opts {
		opt(&o)
	}

	adapter := persistence.New(store,
		persistence.WithLogger(o.logger),
		persistence.WithDefaults(o.seed),
		persistence.WithHooks(o.hooks),
	)
	t := &Tree{
		engine: runtime.NewEngine(
			runtime.WithLogger(o.logger),
			runtime.WithLifecycleHooks(o.hooks),
			runtime.WithBudget(o.budget),
			runtime.WithIDGenerator(o.ids),
		),
		adapter:   adapter,
		debouncer: persistence.NewDebouncer(adapter, o.debounce, persistence.WithDebounceLogger(o.logger)),
		logger:    o.logger,
	}
	t.state = adapter.Restore(ctx)
	t.logger.Debug("tree opened", "nodes", len(t.state.Nodes), "edges", len(t.state.Edges),
		"selected", t.state.Selection.Len())
	return t, nil
}

// apply runs action and, when the state changed, schedules a save.
// The caller must hold t.mu.
func (t *Tree) apply(ctx context.Context, action runtime.Action) error {
	if t.closed {
		return ErrClosed
	}
	next, err := t.engine.Apply(ctx, t.state, action)
	if err != nil {
		return err
	}
	if domain.Diff(t.state, next) == nil {
		return nil
	}
	t.state = next
	t.debouncer.Trigger(next)
	return nil
}

// Click toggles nodeID and returns the projected nodes. Clicks on locked,
// unknown or start nodes, or beyond the point budget, change nothing.
func (t *Tree) Click(ctx context.Context, nodeID string) []domain.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.apply(ctx, runtime.Toggle{NodeID: nodeID}); err != nil {
		t.logger.Debug("click ignored", "node_id", nodeID, "err", err)
	}
	return t.nodes()
}

// AddNode appends a new skill. When prerequisiteID is set, the skill requires it.
func (t *Tree) AddNode(ctx context.Context, input domain.SkillInput, prerequisiteID string) (domain.Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.state.Nodes)
	if err := t.apply(ctx, runtime.AddSkill{Input: input, PrerequisiteID: prerequisiteID}); err != nil {
		return domain.Node{}, fmt.Errorf("failed to add skill: %w", err)
	}
	if len(t.state.Nodes) == before {
		return domain.Node{}, fmt.Errorf("failed to add skill: %w", domain.ErrInvalidSkill)
	}
	return t.state.Nodes[len(t.state.Nodes)-1], nil
}

// Connect makes target require source.
func (t *Tree) Connect(ctx context.Context, source, target string) (domain.Edge, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.apply(ctx, runtime.Connect{Source: source, Target: target}); err != nil {
		return domain.Edge{}, fmt.Errorf("failed to connect skills: %w", err)
	}
	return t.state.Edges[len(t.state.Edges)-1], nil
}

// Options returns every node, locked ones included, for use as prerequisite
// choices when adding a skill.
func (t *Tree) Options() []domain.Node {
	return t.Nodes()
}

// Reset clears the selection and returns the projected nodes.
func (t *Tree) Reset(ctx context.Context) []domain.Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.apply(ctx, runtime.Reset{}); err != nil {
		t.logger.Debug("reset ignored", "err", err)
	}
	return t.nodes()
}

// Nodes returns a copy of the projected nodes.
func (t *Tree) Nodes() []domain.Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes()
}

func (t *Tree) nodes() []domain.Node {
	out := make([]domain.Node, len(t.state.Nodes))
	copy(out, t.state.Nodes)
	return out
}

// Edges returns a copy of the edges.
func (t *Tree) Edges() []domain.Edge {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Edge, len(t.state.Edges))
	copy(out, t.state.Edges)
	return out
}

// State returns a snapshot of the whole tree.
func (t *Tree) State() domain.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Snapshot()
}

// Points returns the skill points spent and the budget (0 = unlimited).
func (t *Tree) Points() (spent, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.Spent(t.state.Nodes, t.state.Selection), t.engine.Budget()
}

// Flush saves any pending change now.
func (t *Tree) Flush(ctx context.Context) error {
	return t.debouncer.Flush(ctx)
}

// Reload replaces the in-memory tree with what the store holds.
// Pending changes are saved first; no mutation can land between the save and
// the read.
func (t *Tree) Reload(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debouncer.Flush(ctx); err != nil {
		return err
	}
	t.state = t.adapter.Restore(ctx)
	return nil
}

// Close saves pending changes and stops the tree. Further mutations are ignored.
func (t *Tree) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.debouncer.Flush(ctx)
	t.debouncer.Stop()
	return err
}

var _ ports.TreeService = (*Tree)(nil)
