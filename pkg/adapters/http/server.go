package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/skilltree"
	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/internal/metrics"
	"github.com/aretw0/skilltree/internal/presentation/graph"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/session"
)

// Server exposes the trees of a session.Manager over a JSON API.
type Server struct {
	Trees   *session.Manager
	Streams *StreamManager

	metrics *metrics.Collector
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams shares sm between handlers instead of creating one per handler.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewHandler creates a new HTTP handler serving the trees of manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Trees:  manager,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/trees/{treeID}", func(r chi.Router) {
		r.Get("/", s.GetTree)
		r.Get("/options", s.GetOptions)
		r.Get("/graph", s.GetGraph)
		r.Get("/events", s.SubscribeEvents)
		r.Post("/nodes", s.AddNode)
		r.Post("/nodes/{nodeID}/toggle", s.ToggleNode)
		r.Post("/edges", s.Connect)
		r.Post("/reset", s.Reset)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TreeResponse is the full view of a tree.
type TreeResponse struct {
	TreeID    string        `json:"tree_id"`
	Nodes     []domain.Node `json:"nodes"`
	Edges     []domain.Edge `json:"edges"`
	Selection []string      `json:"selection"`
	Points    Points        `json:"points"`
}

// Points reports skill point usage. Budget 0 means unlimited.
type Points struct {
	Spent  int `json:"spent"`
	Budget int `json:"budget"`
}

// MutationResponse is returned by every endpoint that changes a tree.
type MutationResponse struct {
	Nodes []domain.Node     `json:"nodes"`
	Diff  *domain.StateDiff `json:"diff,omitempty"`
	Node  *domain.Node      `json:"node,omitempty"`
	Edge  *domain.Edge      `json:"edge,omitempty"`
}

// AddNodeRequest is the body of POST /trees/{treeID}/nodes.
type AddNodeRequest struct {
	domain.SkillInput
	Prerequisite string `json:"prerequisite,omitempty"`
}

// ConnectRequest is the body of POST /trees/{treeID}/edges.
type ConnectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "skilltree-http",
		"version": strings.TrimSpace(skilltree.Version),
		"trees":   s.Trees.List(),
	})
}

// GetTree handles the GET /trees/{treeID} request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	treeID := chi.URLParam(r, "treeID")
	s.withTree(w, r, func(ctx context.Context, tree session.Tree) (any, error) {
		state := tree.State()
		spent, budget := tree.Points()
		return TreeResponse{
			TreeID:    treeID,
			Nodes:     state.Nodes,
			Edges:     state.Edges,
			Selection: state.Selection.IDs(),
			Points:    Points{Spent: spent, Budget: budget},
		}, nil
	})
}

// GetOptions handles the GET /trees/{treeID}/options request.
func (s *Server) GetOptions(w http.ResponseWriter, r *http.Request) {
	s.withTree(w, r, func(ctx context.Context, tree session.Tree) (any, error) {
		return tree.Options(), nil
	})
}

// GetGraph handles the GET /trees/{treeID}/graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var text string
	err := s.Trees.WithTree(r.Context(), chi.URLParam(r, "treeID"), func(ctx context.Context, tree session.Tree) error {
		state := tree.State()
		text = graph.GenerateMermaid(state.Nodes, state.Edges)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, text)
}

// ToggleNode handles the POST /trees/{treeID}/nodes/{nodeID}/toggle request.
// A click that cannot apply still answers 200 with an empty diff.
func (s *Server) ToggleNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, func(ctx context.Context, tree session.Tree, resp *MutationResponse) error {
		tree.Click(ctx, nodeID)
		return nil
	})
}

// AddNode handles the POST /trees/{treeID}/nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body AddNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("AddNode: Invalid request body", "err", err)
		return
	}
	s.mutate(w, r, func(ctx context.Context, tree session.Tree, resp *MutationResponse) error {
		node, err := tree.AddNode(ctx, body.SkillInput, body.Prerequisite)
		if err != nil {
			return err
		}
		resp.Node = &node
		return nil
	})
}

// Connect handles the POST /trees/{treeID}/edges request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Connect: Invalid request body", "err", err)
		return
	}
	s.mutate(w, r, func(ctx context.Context, tree session.Tree, resp *MutationResponse) error {
		edge, err := tree.Connect(ctx, body.Source, body.Target)
		if err != nil {
			return err
		}
		resp.Edge = &edge
		return nil
	})
}

// Reset handles the POST /trees/{treeID}/reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(ctx context.Context, tree session.Tree, resp *MutationResponse) error {
		tree.Reset(ctx)
		return nil
	})
}

func (s *Server) withTree(w http.ResponseWriter, r *http.Request, fn func(context.Context, session.Tree) (any, error)) {
	var out any
	err := s.Trees.WithTree(r.Context(), chi.URLParam(r, "treeID"), func(ctx context.Context, tree session.Tree) error {
		var err error
		out, err = fn(ctx, tree)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// mutate runs fn under the tree lock, computes the visible diff and
// broadcasts it to event subscribers.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(context.Context, session.Tree, *MutationResponse) error) {
	treeID := chi.URLParam(r, "treeID")
	resp := &MutationResponse{}
	err := s.Trees.WithTree(r.Context(), treeID, func(ctx context.Context, tree session.Tree) error {
		before := tree.State()
		if err := fn(ctx, tree, resp); err != nil {
			return err
		}
		after := tree.State()
		resp.Nodes = after.Nodes
		resp.Diff = domain.Diff(before, after)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if resp.Diff != nil {
		s.logger.Debug("tree changed", "tree_id", treeID, "diff", resp.Diff)
		if bytes, err := json.Marshal(resp.Diff); err == nil {
			s.Streams.Broadcast(treeID, string(bytes))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidTreeID), errors.Is(err, domain.ErrInvalidSkill):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrTreeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEdge), errors.Is(err, domain.ErrDuplicateNode), errors.Is(err, domain.ErrCycle):
		return http.StatusConflict
	case errors.Is(err, skilltree.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
