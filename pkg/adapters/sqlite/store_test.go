package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/skilltree/pkg/adapters/sqlite"
	"github.com/aretw0/skilltree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.KVStore = (*sqlite.Store)(nil)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunKVStoreContract(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "skilltree.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "skillTreeNodes", `[{"id":"node"}]`))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "skillTreeNodes")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"node"}]`, got)
}
