package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skilltree"
	"github.com/aretw0/skilltree/pkg/adapters/memory"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/ports"
	"github.com/aretw0/skilltree/pkg/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	manager := session.NewManager(memory.NewStore(), func(ctx context.Context, store ports.KVStore) (session.Tree, error) {
		return skilltree.Open(ctx, store)
	})
	t.Cleanup(func() { _ = manager.Close(context.Background()) })
	return NewServer(manager)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestGetTree_DefaultTree(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleGetTree(context.Background(), mcp.CallToolRequest{}, TreeArgs{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTreeID, res.TreeID)
	assert.Len(t, res.Nodes, 7)
	assert.Len(t, res.Edges, 7)
	assert.Empty(t, res.Selection)
	assert.Equal(t, []string{DefaultTreeID}, s.trees.List())
}

func TestToggle_SelectAndCascade(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleToggle(ctx, mcp.CallToolRequest{}, ToggleArgs{NodeID: "node-1"})
	require.NoError(t, err)
	require.NotNil(t, res.Diff)
	assert.Equal(t, []string{"node-1"}, res.Diff.Selected)
	assert.ElementsMatch(t, []string{"node-2", "node-5"}, res.Diff.Unlocked)

	_, err = s.handleToggle(ctx, mcp.CallToolRequest{}, ToggleArgs{NodeID: "node-2"})
	require.NoError(t, err)

	res, err = s.handleToggle(ctx, mcp.CallToolRequest{}, ToggleArgs{NodeID: "node-1"})
	require.NoError(t, err)
	require.NotNil(t, res.Diff)
	assert.ElementsMatch(t, []string{"node-1", "node-2"}, res.Diff.Deselected)
}

func TestToggle_LockedNodeHasNoDiff(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleToggle(context.Background(), mcp.CallToolRequest{}, ToggleArgs{NodeID: "node-6"})
	require.NoError(t, err)
	assert.Nil(t, res.Diff)
}

func TestToggle_MissingNodeID(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleToggle(context.Background(), mcp.CallToolRequest{}, ToggleArgs{})
	assert.Error(t, err)
}

func TestAddSkillAndConnect(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	added, err := s.handleAddSkill(ctx, mcp.CallToolRequest{}, AddSkillArgs{
		TreeID:       "guild",
		Label:        "Dash",
		Category:     domain.CategoryMovement,
		Cost:         2,
		Prerequisite: "node-1",
	})
	require.NoError(t, err)
	require.NotNil(t, added.Node)
	assert.Equal(t, "node-7", added.Node.ID)
	assert.True(t, added.Node.Locked)
	require.NotNil(t, added.Diff)
	assert.Equal(t, []string{"node-7"}, added.Diff.AddedNodes)

	connected, err := s.handleConnect(ctx, mcp.CallToolRequest{}, ConnectArgs{TreeID: "guild", Source: "node-7", Target: "node-6"})
	require.NoError(t, err)
	require.NotNil(t, connected.Edge)
	assert.Equal(t, "node-7", connected.Edge.Source)

	_, err = s.handleConnect(ctx, mcp.CallToolRequest{}, ConnectArgs{TreeID: "guild", Source: "node-6", Target: "node-1"})
	assert.ErrorIs(t, err, domain.ErrCycle)

	_, err = s.handleAddSkill(ctx, mcp.CallToolRequest{}, AddSkillArgs{TreeID: "guild"})
	assert.ErrorIs(t, err, domain.ErrInvalidSkill)
}

func TestListOptionsAndReset(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	opts, err := s.handleListOptions(ctx, mcp.CallToolRequest{}, TreeArgs{})
	require.NoError(t, err)
	assert.Len(t, opts.Options, 7)

	_, err = s.handleToggle(ctx, mcp.CallToolRequest{}, ToggleArgs{NodeID: "node-3"})
	require.NoError(t, err)

	res, err := s.handleReset(ctx, mcp.CallToolRequest{}, TreeArgs{})
	require.NoError(t, err)
	require.NotNil(t, res.Diff)
	assert.Equal(t, []string{"node-3"}, res.Diff.Deselected)
}

func TestStructuredHandler_ReportsErrorsAsToolResults(t *testing.T) {
	s := newTestServer(t)
	handler := mcp.NewStructuredToolHandler(s.handleConnect)

	res, err := handler(context.Background(), callRequest("connect_skills", map[string]any{
		"source": "node-1",
		"target": "missing",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = handler(context.Background(), callRequest("connect_skills", map[string]any{
		"source": "node-3",
		"target": "node-5",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.NotNil(t, res.StructuredContent)
}

func TestInvalidTreeID(t *testing.T) {
	s := newTestServer(t)
	_, err := s.handleGetTree(context.Background(), mcp.CallToolRequest{}, TreeArgs{TreeID: "../etc"})
	assert.ErrorIs(t, err, session.ErrInvalidTreeID)
}

func TestReadGraphResource(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.readGraph(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, GraphURI, text.URI)
	assert.Contains(t, text.Text, "graph TD")
	assert.Contains(t, text.Text, "node --> node_1")
}
