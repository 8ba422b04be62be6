package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/skilltree"
	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/internal/presentation/graph"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/session"
)

// DefaultTreeID is used by tools called without a tree_id.
const DefaultTreeID = session.DefaultTreeID

// GraphURI is the resource exposing the default tree as a Mermaid diagram.
const GraphURI = "skilltree://graph"

// TreeResult is the full view of a tree returned by get_tree.
type TreeResult struct {
	TreeID    string        `json:"tree_id" jsonschema_description:"The tree identifier"`
	Nodes     []domain.Node `json:"nodes" jsonschema_description:"Nodes with selected and locked flags"`
	Edges     []domain.Edge `json:"edges" jsonschema_description:"Prerequisite edges (source must be selected before target)"`
	Selection []string      `json:"selection" jsonschema_description:"Selected node ids"`
	Spent     int           `json:"spent" jsonschema_description:"Skill points spent"`
	Budget    int           `json:"budget" jsonschema_description:"Skill point budget, 0 when unlimited"`
}

// MutationResult is returned by every tool that changes a tree.
type MutationResult struct {
	TreeID string            `json:"tree_id"`
	Diff   *domain.StateDiff `json:"diff,omitempty" jsonschema_description:"What changed; absent when the call had no effect"`
	Node   *domain.Node      `json:"node,omitempty"`
	Edge   *domain.Edge      `json:"edge,omitempty"`
}

// OptionsResult lists the nodes that may be offered as prerequisites.
type OptionsResult struct {
	TreeID  string        `json:"tree_id"`
	Options []domain.Node `json:"options"`
}

// TreeArgs selects a tree.
type TreeArgs struct {
	TreeID string `json:"tree_id,omitempty"`
}

// ToggleArgs are the arguments of toggle_node.
type ToggleArgs struct {
	TreeID string `json:"tree_id,omitempty"`
	NodeID string `json:"node_id"`
}

// AddSkillArgs are the arguments of add_skill.
type AddSkillArgs struct {
	TreeID       string  `json:"tree_id,omitempty"`
	Label        string  `json:"label"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	Cost         int     `json:"cost,omitempty"`
	Prerequisite string  `json:"prerequisite,omitempty"`
	X            float64 `json:"x,omitempty"`
	Y            float64 `json:"y,omitempty"`
}

// ConnectArgs are the arguments of connect_skills.
type ConnectArgs struct {
	TreeID string `json:"tree_id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Server exposes the trees of a session.Manager as an MCP server.
type Server struct {
	trees     *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(trees *session.Manager, opts ...Option) *Server {
	s := &Server{
		trees:     trees,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("skilltree-mcp", strings.TrimSpace(skilltree.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and blocks until ctx
// is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func treeIDParam() mcp.ToolOption {
	return mcp.WithString("tree_id", mcp.Description("Tree identifier (defaults to \"default\")"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get every node and edge of a skill tree with its current selection."),
		treeIDParam(),
		mcp.WithOutputSchema[TreeResult](),
	), mcp.NewStructuredToolHandler(s.handleGetTree))

	s.mcpServer.AddTool(mcp.NewTool("toggle_node",
		mcp.WithDescription("Click a skill: select it when unlocked, or deselect it together with everything that depends on it."),
		treeIDParam(),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("The node to toggle")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleToggle))

	s.mcpServer.AddTool(mcp.NewTool("add_skill",
		mcp.WithDescription("Add a new skill, optionally requiring an existing node."),
		treeIDParam(),
		mcp.WithString("label", mcp.Required(), mcp.Description("Skill name")),
		mcp.WithString("description", mcp.Description("Short description")),
		mcp.WithString("category", mcp.Description("movement, combat or utility"),
			mcp.Enum(domain.CategoryMovement, domain.CategoryCombat, domain.CategoryUtility)),
		mcp.WithNumber("cost", mcp.Description("Skill point cost (1-10)")),
		mcp.WithString("prerequisite", mcp.Description("Id of the node that must be selected first")),
		mcp.WithNumber("x", mcp.Description("Horizontal position")),
		mcp.WithNumber("y", mcp.Description("Vertical position")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleAddSkill))

	s.mcpServer.AddTool(mcp.NewTool("connect_skills",
		mcp.WithDescription("Make target require source. Rejected when it would create a cycle."),
		treeIDParam(),
		mcp.WithString("source", mcp.Required(), mcp.Description("Prerequisite node id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Dependent node id")),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleConnect))

	s.mcpServer.AddTool(mcp.NewTool("list_options",
		mcp.WithDescription("List the nodes that can be used as a prerequisite."),
		treeIDParam(),
		mcp.WithOutputSchema[OptionsResult](),
	), mcp.NewStructuredToolHandler(s.handleListOptions))

	s.mcpServer.AddTool(mcp.NewTool("reset_selection",
		mcp.WithDescription("Deselect every skill of a tree."),
		treeIDParam(),
		mcp.WithOutputSchema[MutationResult](),
	), mcp.NewStructuredToolHandler(s.handleReset))
}

func (s *Server) handleGetTree(ctx context.Context, request mcp.CallToolRequest, args TreeArgs) (TreeResult, error) {
	var out TreeResult
	treeID := treeIDOrDefault(args.TreeID)
	err := s.trees.WithTree(ctx, treeID, func(ctx context.Context, tree session.Tree) error {
		state := tree.State()
		spent, budget := tree.Points()
		out = TreeResult{
			TreeID:    treeID,
			Nodes:     state.Nodes,
			Edges:     state.Edges,
			Selection: state.Selection.IDs(),
			Spent:     spent,
			Budget:    budget,
		}
		return nil
	})
	return out, err
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest, args ToggleArgs) (MutationResult, error) {
	if args.NodeID == "" {
		return MutationResult{}, fmt.Errorf("node_id is required")
	}
	return s.mutate(ctx, args.TreeID, func(ctx context.Context, tree session.Tree, out *MutationResult) error {
		tree.Click(ctx, args.NodeID)
		return nil
	})
}

func (s *Server) handleAddSkill(ctx context.Context, request mcp.CallToolRequest, args AddSkillArgs) (MutationResult, error) {
	input := domain.SkillInput{
		Label:       args.Label,
		Description: args.Description,
		Category:    args.Category,
		Cost:        args.Cost,
		Position:    domain.Position{X: args.X, Y: args.Y},
	}
	return s.mutate(ctx, args.TreeID, func(ctx context.Context, tree session.Tree, out *MutationResult) error {
		node, err := tree.AddNode(ctx, input, args.Prerequisite)
		if err != nil {
			return err
		}
		out.Node = &node
		return nil
	})
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args ConnectArgs) (MutationResult, error) {
	return s.mutate(ctx, args.TreeID, func(ctx context.Context, tree session.Tree, out *MutationResult) error {
		edge, err := tree.Connect(ctx, args.Source, args.Target)
		if err != nil {
			return err
		}
		out.Edge = &edge
		return nil
	})
}

func (s *Server) handleListOptions(ctx context.Context, request mcp.CallToolRequest, args TreeArgs) (OptionsResult, error) {
	out := OptionsResult{TreeID: treeIDOrDefault(args.TreeID)}
	err := s.trees.WithTree(ctx, out.TreeID, func(ctx context.Context, tree session.Tree) error {
		out.Options = tree.Options()
		return nil
	})
	return out, err
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args TreeArgs) (MutationResult, error) {
	return s.mutate(ctx, args.TreeID, func(ctx context.Context, tree session.Tree, out *MutationResult) error {
		tree.Reset(ctx)
		return nil
	})
}

func (s *Server) mutate(ctx context.Context, treeID string, fn func(context.Context, session.Tree, *MutationResult) error) (MutationResult, error) {
	out := MutationResult{TreeID: treeIDOrDefault(treeID)}
	err := s.trees.WithTree(ctx, out.TreeID, func(ctx context.Context, tree session.Tree) error {
		before := tree.State()
		if err := fn(ctx, tree, &out); err != nil {
			return err
		}
		out.Diff = domain.Diff(before, tree.State())
		return nil
	})
	if err != nil {
		s.logger.Debug("MCP tool rejected", "tree_id", out.TreeID, "err", err)
		return MutationResult{}, err
	}
	return out, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Skill Tree Graph",
		mcp.WithResourceDescription("Mermaid diagram of the default skill tree"),
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var text string
	err := s.trees.WithTree(ctx, DefaultTreeID, func(ctx context.Context, tree session.Tree) error {
		state := tree.State()
		text = graph.GenerateMermaid(state.Nodes, state.Edges)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

func treeIDOrDefault(id string) string {
	if id == "" {
		return DefaultTreeID
	}
	return id
}
