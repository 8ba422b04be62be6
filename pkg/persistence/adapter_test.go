package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/skilltree/pkg/adapters/memory"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/dsl"
	"github.com/aretw0/skilltree/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every Get and Set.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("backend down")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("backend down")
}

func TestAdapter_SaveFoldsSelection(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := persistence.New(store)

	state := domain.NewState(dsl.Seed(), domain.NewSelection("node-1", "node-3"))
	require.NoError(t, a.Save(ctx, state))

	raw, err := store.Get(ctx, persistence.NodesKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, `"locked"`, "derived flags are never persisted")

	restored := a.Restore(ctx)
	assert.ElementsMatch(t, []string{"node-1", "node-3"}, restored.Selection.IDs())
	assert.Equal(t, state.Edges, restored.Edges)
}

func TestAdapter_Load_ScenarioC(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, persistence.NodesKey, "{not json"))

	g := persistence.New(store).Load(ctx)
	assert.Equal(t, dsl.Seed(), g)
}

func TestAdapter_Load_PerKeyFallback(t *testing.T) {
	ctx := context.Background()
	customNodes := `[{"id":"root","kind":"start","position":{"x":0,"y":0},"selected":false},` +
		`{"id":"a","kind":"skill","label":"A","position":{"x":1,"y":1},"selected":false}]`

	tests := []struct {
		name      string
		edgesRaw  *string
		wantEdges []domain.Edge
	}{
		{name: "absent", edgesRaw: nil},
		{name: "null", edgesRaw: ptr("null")},
		{name: "empty array", edgesRaw: ptr("[]")},
		{name: "object", edgesRaw: ptr(`{"id":"edge-1"}`)},
		{name: "malformed", edgesRaw: ptr("[{")},
		{name: "incomplete edge", edgesRaw: ptr(`[{"id":"e","source":"root"}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			require.NoError(t, store.Set(ctx, persistence.NodesKey, customNodes))
			if tt.edgesRaw != nil {
				require.NoError(t, store.Set(ctx, persistence.EdgesKey, *tt.edgesRaw))
			}

			g := persistence.New(store).Load(ctx)
			require.Len(t, g.Nodes, 2, "valid nodes are kept")
			assert.Equal(t, "root", g.StartID())
			assert.Equal(t, dsl.Seed().Edges, g.Edges, "edges fall back on their own")
		})
	}
}

func TestAdapter_Load_InvalidNodes(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"null":         "null",
		"empty":        "[]",
		"not an array": `{"id":"node"}`,
		"missing id":   `[{"kind":"skill"}]`,
		"duplicate id": `[{"id":"a"},{"id":"a"}]`,
		"two starts":   `[{"id":"s1","kind":"start"},{"id":"s2","kind":"start"},{"id":"x"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			store := memory.NewStore()
			require.NoError(t, store.Set(ctx, persistence.NodesKey, raw))
			g := persistence.New(store).Load(ctx)
			assert.Equal(t, dsl.Seed().Nodes, g.Nodes)
		})
	}
}

func TestAdapter_Load_DropsDanglingEdges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, persistence.NodesKey,
		`[{"id":"root","kind":"start"},{"id":"a"},{"id":"b"}]`))
	require.NoError(t, store.Set(ctx, persistence.EdgesKey,
		`[{"id":"e1","source":"root","target":"a"},{"id":"e2","source":"ghost","target":"b"},{"id":"e3","source":"a","target":"gone"}]`))

	state := persistence.New(store).Restore(ctx)
	assert.Equal(t, []domain.Edge{{ID: "e1", Source: "root", Target: "a"}}, state.Edges)
	for _, n := range state.Nodes {
		assert.False(t, n.Locked, "%s must be reachable", n.ID)
	}
}

func TestAdapter_Load_TwoStartsFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, persistence.NodesKey,
		`[{"id":"s1","kind":"start"},{"id":"s2","kind":"start"},{"id":"x","kind":"skill"}]`))
	require.NoError(t, store.Set(ctx, persistence.EdgesKey, `[{"id":"e","source":"s2","target":"x"}]`))

	state := persistence.New(store).Restore(ctx)
	assert.Equal(t, dsl.SeedStartID, state.StartID())
	starts := 0
	for _, n := range state.Nodes {
		if n.IsStart() {
			starts++
		}
	}
	assert.Equal(t, 1, starts)
}

func TestAdapter_Load_StoreErrors(t *testing.T) {
	var fallbacks []string
	a := persistence.New(failingStore{}, persistence.WithHooks(domain.LifecycleHooks{
		OnLoadFallback: func(_ context.Context, e *domain.StoreEvent) {
			fallbacks = append(fallbacks, e.Key)
			assert.Error(t, e.Error)
		},
	}))

	g := a.Load(context.Background())
	assert.Equal(t, dsl.Seed(), g)
	assert.Equal(t, []string{persistence.NodesKey, persistence.EdgesKey}, fallbacks)
}

func TestAdapter_Load_DefaultsKindAndClearsLocked(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, persistence.NodesKey, `[{"id":"x","locked":true}]`))

	g := persistence.New(store).Load(ctx)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, domain.KindSkill, g.Nodes[0].Kind)
	assert.False(t, g.Nodes[0].Locked)
}

func TestAdapter_WithDefaults(t *testing.T) {
	custom := domain.Graph{
		Nodes: []domain.Node{{ID: "root", Kind: domain.KindStart}},
		Edges: []domain.Edge{{ID: "e", Source: "root", Target: "root"}},
	}
	a := persistence.New(memory.NewStore(), persistence.WithDefaults(func() domain.Graph { return custom.Clone() }))
	assert.Equal(t, custom, a.Load(context.Background()))
}

func TestAdapter_LoadSaveEquivalence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := persistence.New(store)

	require.NoError(t, a.Save(ctx, domain.NewState(dsl.Seed(), domain.NewSelection("node-1", "node-2"))))
	nodesBefore, _ := store.Get(ctx, persistence.NodesKey)
	edgesBefore, _ := store.Get(ctx, persistence.EdgesKey)

	require.NoError(t, a.Save(ctx, a.Restore(ctx)))
	nodesAfter, _ := store.Get(ctx, persistence.NodesKey)
	edgesAfter, _ := store.Get(ctx, persistence.EdgesKey)

	assert.JSONEq(t, nodesBefore, nodesAfter)
	assert.JSONEq(t, edgesBefore, edgesAfter)
}

func TestAdapter_Restore_ScenarioD(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := persistence.New(store)

	// node-2 is stored as selected although its prerequisite node-1 is not;
	// node-6 depends on node-2 and is dropped with it.
	g := dsl.Seed()
	for i := range g.Nodes {
		switch g.Nodes[i].ID {
		case "node-2", "node-3", "node-4", "node-6":
			g.Nodes[i].Selected = true
		}
	}
	require.NoError(t, a.Save(ctx, domain.State{Graph: g, Selection: domain.SelectionFromNodes(g.Nodes)}))

	state := a.Restore(ctx)
	assert.ElementsMatch(t, []string{"node-3", "node-4"}, state.Selection.IDs())
	for _, n := range state.Nodes {
		assert.Equal(t, state.Selection.Has(n.ID), n.Selected, n.ID)
	}
}

func TestAdapter_SaveErrors(t *testing.T) {
	var saved []string
	a := persistence.New(failingStore{}, persistence.WithHooks(domain.LifecycleHooks{
		OnSave: func(_ context.Context, e *domain.StoreEvent) { saved = append(saved, e.Key) },
	}))

	err := a.Save(context.Background(), domain.NewState(dsl.Seed(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), persistence.NodesKey)
	assert.Contains(t, err.Error(), persistence.EdgesKey)
	assert.Equal(t, []string{persistence.NodesKey, persistence.EdgesKey}, saved)
}

func TestAdapter_SaveEmptyEdges(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	state := domain.NewState(domain.Graph{Nodes: []domain.Node{{ID: "root", Kind: domain.KindStart}}}, nil)
	require.NoError(t, persistence.New(store).Save(ctx, state))

	raw, err := store.Get(ctx, persistence.EdgesKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func ptr(s string) *string { return &s }
