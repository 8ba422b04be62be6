package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/skilltree/pkg/adapters/memory"
	"github.com/aretw0/skilltree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.KVStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunKVStoreContract(t, store)
}

func TestMemoryStore_Keys(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "skillTreeNodes", "[]"))
	require.NoError(t, store.Set(ctx, "skillTreeEdges", "[]"))

	assert.ElementsMatch(t, []string{"skillTreeNodes", "skillTreeEdges"}, store.Keys())
}
