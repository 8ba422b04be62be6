package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/skilltree"
	"github.com/aretw0/skilltree/pkg/adapters/memory"
	"github.com/aretw0/skilltree/pkg/adapters/redis"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/persistence"
	"github.com/aretw0/skilltree/pkg/ports"
	"github.com/aretw0/skilltree/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opener(opts ...skilltree.Option) session.Opener {
	return func(ctx context.Context, store ports.KVStore) (session.Tree, error) {
		return skilltree.Open(ctx, store, opts...)
	}
}

func TestManager_TreesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := session.NewManager(store, opener())

	alice, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	bob, err := m.Get(ctx, "bob")
	require.NoError(t, err)

	alice.Click(ctx, "node-1")
	require.NoError(t, m.Close(ctx))

	aliceState := persistence.New(ports.Prefixed(store, "alice.")).Restore(ctx)
	assert.Equal(t, []string{"node-1"}, aliceState.Selection.IDs())

	_, err = store.Get(ctx, "bob."+persistence.NodesKey)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound, "bob never changed anything")
	assert.Empty(t, bob.State().Selection.IDs())
}

func TestManager_DefaultTreeUsesBareKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := session.NewManager(store, opener())

	tree, err := m.Get(ctx, session.DefaultTreeID)
	require.NoError(t, err)
	tree.Click(ctx, "node-1")
	require.NoError(t, m.Close(ctx))

	state := persistence.New(store).Restore(ctx)
	assert.Equal(t, []string{"node-1"}, state.Selection.IDs())

	_, err = store.Get(ctx, "default."+persistence.NodesKey)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "", session.KeyPrefix(session.DefaultTreeID))
	assert.Equal(t, "guild.", session.KeyPrefix("guild"))
}

func TestManager_GetCaches(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.NewStore(), opener())

	a, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	b, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, []string{"t1"}, m.List())

	looked, err := m.Lookup("t1")
	require.NoError(t, err)
	assert.Same(t, a, looked)

	_, err = m.Lookup("t2")
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)
}

func TestManager_InvalidIDs(t *testing.T) {
	m := session.NewManager(memory.NewStore(), opener())
	for _, id := range []string{"", "../etc", "a.b", "with space", "-lead"} {
		_, err := m.Get(context.Background(), id)
		assert.ErrorIs(t, err, session.ErrInvalidTreeID, id)
	}
}

func TestManager_Evict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := session.NewManager(store, opener(skilltree.WithDebounce(time.Hour)))

	tree, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	tree.Click(ctx, "node-3")

	require.NoError(t, m.Evict(ctx, "t1"), "evict flushes pending changes")
	assert.Empty(t, m.List())
	assert.ErrorIs(t, m.Evict(ctx, "t1"), domain.ErrTreeNotFound)

	reopened, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"node-3"}, reopened.State().Selection.IDs())
}

func TestManager_ConcurrentWithTree(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.NewStore(), opener())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithTree(ctx, "shared", func(ctx context.Context, tree session.Tree) error {
				_, err := tree.AddNode(ctx, domain.SkillInput{Label: "Extra"}, "")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	tree, err := m.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, tree.Options(), 7+20, "every add lands with a unique id")
}

func TestManager_DistributedLockSharesState(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, "skilltree:")

	// Two replicas over the same Redis.
	r1 := session.NewManager(store, opener(skilltree.WithDebounce(time.Hour)), session.WithLocker(locker))
	r2 := session.NewManager(store, opener(skilltree.WithDebounce(time.Hour)), session.WithLocker(locker))

	require.NoError(t, r1.WithTree(ctx, "guild", func(ctx context.Context, tree session.Tree) error {
		tree.Click(ctx, "node-1")
		return nil
	}))
	require.NoError(t, r2.WithTree(ctx, "guild", func(ctx context.Context, tree session.Tree) error {
		assert.True(t, tree.State().Selection.Has("node-1"), "replica 2 sees replica 1's change")
		tree.Click(ctx, "node-2")
		return nil
	}))
	require.NoError(t, r1.WithTree(ctx, "guild", func(ctx context.Context, tree session.Tree) error {
		assert.Equal(t, []string{"node-1", "node-2"}, tree.State().Selection.IDs())
		return nil
	}))

	assert.False(t, mr.Exists("skilltree:lock:guild"), "lock released")
}
