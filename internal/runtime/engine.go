package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/pkg/domain"
)

// spacing between a new skill and its prerequisite when no position is given.
const placementOffset = 150

// Engine applies actions to a tree state. It holds no state of its own, so one
// Engine can serve any number of trees.
type Engine struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	ids      IDGenerator
	budget   int
	validate *validator.Validate
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithIDGenerator replaces the sequential id scheme.
func WithIDGenerator(ids IDGenerator) Option {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithBudget caps the skill points that can be spent. Zero means unlimited.
func WithBudget(points int) Option {
	return func(e *Engine) {
		e.budget = points
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:   logging.NewNop(),
		ids:      SequentialIDs{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Budget returns the configured point budget (0 = unlimited).
func (e *Engine) Budget() int {
	return e.budget
}

// Remaining returns the points still available in state, or -1 when unlimited.
func (e *Engine) Remaining(state domain.State) int {
	if e.budget <= 0 {
		return -1
	}
	return e.budget - domain.Spent(state.Nodes, state.Selection)
}

// Apply computes the state that follows action. The input state is never
// modified. Toggle and Reset never fail: rejected clicks return the state
// unchanged. AddSkill and Connect report authoring errors.
func (e *Engine) Apply(ctx context.Context, state domain.State, action Action) (domain.State, error) {
	switch a := action.(type) {
	case Toggle:
		return e.toggle(ctx, state, a.NodeID), nil
	case AddSkill:
		return e.addSkill(ctx, state, a)
	case Connect:
		return e.connect(ctx, state, a)
	case Reset:
		return domain.NewState(state.Graph, domain.NewSelection()), nil
	case nil:
		return state, errors.New("nil action")
	default:
		return state, fmt.Errorf("unsupported action %q", action.actionName())
	}
}

func (e *Engine) toggle(ctx context.Context, state domain.State, nodeID string) domain.State {
	node, ok := state.Node(nodeID)
	if !ok {
		e.logger.Debug("click ignored: unknown node", "node_id", nodeID)
		e.emitToggle(ctx, nodeID, false, false, nil)
		return state
	}
	if node.IsStart() {
		e.logger.Debug("click ignored: start node", "node_id", nodeID)
		e.emitToggle(ctx, nodeID, false, false, nil)
		return state
	}

	wasSelected := state.Selection.Has(nodeID)
	if !wasSelected && e.budget > 0 {
		if spent := domain.Spent(state.Nodes, state.Selection); spent+node.PointCost() > e.budget {
			e.logger.Debug("click ignored: not enough skill points",
				"node_id", nodeID, "cost", node.PointCost(), "spent", spent, "budget", e.budget)
			e.emitToggle(ctx, nodeID, false, false, nil)
			return state
		}
	}

	next := domain.Toggle(nodeID, state.Selection, state.Edges, state.StartID())
	if next.Equal(state.Selection) {
		e.logger.Debug("click ignored: node is locked", "node_id", nodeID,
			"requires", domain.Prerequisites(nodeID, state.Edges))
		e.emitToggle(ctx, nodeID, false, false, nil)
		return state
	}

	var cascaded []string
	if wasSelected {
		for _, id := range state.Selection.Without(next).IDs() {
			if id != nodeID {
				cascaded = append(cascaded, id)
			}
		}
		if len(cascaded) > 0 {
			e.logger.Debug("deselection cascaded", "node_id", nodeID, "dependents", cascaded)
		}
	}
	e.emitToggle(ctx, nodeID, true, !wasSelected, cascaded)
	return domain.NewState(state.Graph, next)
}

func (e *Engine) addSkill(ctx context.Context, state domain.State, a AddSkill) (domain.State, error) {
	if err := e.validate.Struct(a.Input); err != nil {
		return state, fmt.Errorf("%w: %s", domain.ErrInvalidSkill, describe(err))
	}
	if strings.TrimSpace(a.Input.Label) == "" {
		return state, fmt.Errorf("%w: label: blank", domain.ErrInvalidSkill)
	}

	var prereq domain.Node
	if a.PrerequisiteID != "" {
		var ok bool
		if prereq, ok = state.Node(a.PrerequisiteID); !ok {
			return state, fmt.Errorf("prerequisite %q: %w", a.PrerequisiteID, domain.ErrNodeNotFound)
		}
	}

	g := state.Graph.Clone()
	node := domain.Node{
		ID:          e.ids.NodeID(g),
		Kind:        domain.KindSkill,
		Label:       strings.TrimSpace(a.Input.Label),
		Description: a.Input.Description,
		Category:    a.Input.Category,
		Cost:        a.Input.Cost,
		Position:    a.Input.Position,
	}
	if node.Category == "" {
		node.Category = domain.CategoryMovement
	}
	if node.Cost == 0 {
		node.Cost = domain.DefaultCost
	}
	if _, taken := g.Node(node.ID); taken {
		return state, fmt.Errorf("%w: %s", domain.ErrDuplicateNode, node.ID)
	}
	if node.Position == (domain.Position{}) && a.PrerequisiteID != "" {
		node.Position = domain.Position{X: prereq.Position.X, Y: prereq.Position.Y + placementOffset}
	}
	g.Nodes = append(g.Nodes, node)

	var edgeID string
	if a.PrerequisiteID != "" {
		edgeID = e.ids.EdgeID(g)
		g.Edges = append(g.Edges, domain.Edge{ID: edgeID, Source: a.PrerequisiteID, Target: node.ID})
	}

	e.logger.Debug("skill added", "node_id", node.ID, "prerequisite", a.PrerequisiteID)
	e.emitGraph(ctx, domain.EventSkillAdded, node.ID, edgeID)
	return domain.NewState(g, state.Selection), nil
}

func (e *Engine) connect(ctx context.Context, state domain.State, a Connect) (domain.State, error) {
	for _, id := range []string{a.Source, a.Target} {
		if _, ok := state.Node(id); !ok {
			return state, fmt.Errorf("connect %s->%s: %q: %w", a.Source, a.Target, id, domain.ErrNodeNotFound)
		}
	}
	if a.Source == a.Target {
		return state, fmt.Errorf("%w: %s cannot require itself", domain.ErrCycle, a.Source)
	}
	if state.HasEdge(a.Source, a.Target) {
		return state, fmt.Errorf("%w: %s->%s", domain.ErrDuplicateEdge, a.Source, a.Target)
	}
	if domain.Reachable(a.Target, a.Source, state.Edges) {
		return state, fmt.Errorf("%w: %s already depends on %s", domain.ErrCycle, a.Source, a.Target)
	}

	g := state.Graph.Clone()
	edge := domain.Edge{ID: e.ids.EdgeID(g), Source: a.Source, Target: a.Target}
	g.Edges = append(g.Edges, edge)

	// The new requirement may invalidate selections downstream of Target.
	sel := domain.Reconcile(state.Selection, g.Nodes, g.Edges)
	if dropped := state.Selection.Without(sel); dropped.Len() > 0 {
		e.logger.Debug("connect deselected nodes missing the new prerequisite",
			"edge_id", edge.ID, "node_ids", dropped.IDs())
	}

	e.emitGraph(ctx, domain.EventEdgeAdded, "", edge.ID)
	return domain.NewState(g, sel), nil
}

func (e *Engine) emitToggle(ctx context.Context, nodeID string, applied, selected bool, cascaded []string) {
	if e.hooks.OnToggle == nil {
		return
	}
	e.hooks.OnToggle(ctx, &domain.ToggleEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToggle},
		NodeID:    nodeID,
		Applied:   applied,
		Selected:  selected,
		Cascaded:  cascaded,
	})
}

func (e *Engine) emitGraph(ctx context.Context, t domain.EventType, nodeID, edgeID string) {
	if e.hooks.OnGraphChange == nil {
		return
	}
	e.hooks.OnGraphChange(ctx, &domain.GraphEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t},
		NodeID:    nodeID,
		EdgeID:    edgeID,
	})
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s: %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag())
		}
	}
	return strings.Join(parts, ", ")
}
