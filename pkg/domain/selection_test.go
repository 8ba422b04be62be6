package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_JSONIsSortedArray(t *testing.T) {
	sel := domain.NewSelection("node-3", "node-1")

	data, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.JSONEq(t, `["node-1","node-3"]`, string(data))

	var back domain.Selection
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(sel))
}

func TestSelectionFromNodes(t *testing.T) {
	nodes := []domain.Node{
		{ID: "a", Selected: true},
		{ID: "b"},
		{ID: "c", Selected: true},
	}
	assert.Equal(t, []string{"a", "c"}, domain.SelectionFromNodes(nodes).IDs())
}

func TestState_SnapshotIsIndependent(t *testing.T) {
	s := domain.NewState(scenarioGraph(), domain.NewSelection("A"))
	snap := s.Snapshot()

	snap.Nodes[0].Label = "changed"
	snap.Selection["C"] = struct{}{}

	assert.Empty(t, s.Nodes[0].Label)
	assert.False(t, s.Selection.Has("C"))
}
