package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore implementation
// adheres to the defined interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		value := `[{"id":"node","kind":"start","position":{"x":0,"y":0},"selected":false}]`

		err := store.Set(ctx, key, value)
		require.NoError(t, err, "Set should not return error")

		got, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, value, got, "value must round-trip byte for byte")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, "first"))
		require.NoError(t, store.Set(ctx, key, "second"))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Empty Value", func(t *testing.T) {
		emptyKey := key + "-empty"
		require.NoError(t, store.Set(ctx, emptyKey, ""))

		got, err := store.Get(ctx, emptyKey)
		require.NoError(t, err, "an empty value is still a present key")
		assert.Equal(t, "", got)
	})

	t.Run("Independent Keys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key+"-a", "a"))
		require.NoError(t, store.Set(ctx, key+"-b", "b"))

		a, err := store.Get(ctx, key+"-a")
		require.NoError(t, err)
		b, err := store.Get(ctx, key+"-b")
		require.NoError(t, err)
		assert.Equal(t, "a", a)
		assert.Equal(t, "b", b)
	})
}
