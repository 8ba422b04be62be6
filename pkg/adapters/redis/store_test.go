package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/skilltree/pkg/adapters/redis"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var _ ports.KVStore = (*redis.Store)(nil)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunKVStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	err = store.Set(ctx, "skillTreeNodes", "[]")
	assert.NoError(t, err)

	got, err := store.Get(ctx, "skillTreeNodes")
	assert.NoError(t, err)
	assert.Equal(t, "[]", got)

	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "skillTreeNodes")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err = store.Set(ctx, "skillTreeEdges", "[]")
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:skillTreeEdges"), "Expected key with custom prefix to exist")
	assert.False(t, mr.Exists("skilltree:skillTreeEdges"), "Default prefix must not be used")
}

func TestRedisStore_ConnectionError(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)

	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()
	mr.Close()

	_, err = store.Get(context.Background(), "skillTreeNodes")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound, "transport errors are not absence")
}
