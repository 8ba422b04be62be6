package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStore is a minimal map-backed KVStore.
type MockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

func (m *MockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunKVStoreContract(t, NewMockStore())
}

func TestPrefixed_Contract(t *testing.T) {
	ports.RunKVStoreContract(t, ports.Prefixed(NewMockStore(), "tree-a:"))
}

func TestPrefixed_IsolatesNamespaces(t *testing.T) {
	ctx := context.Background()
	backend := NewMockStore()
	a := ports.Prefixed(backend, "a:")
	b := ports.Prefixed(backend, "b:")

	require.NoError(t, a.Set(ctx, "skillTreeNodes", "from-a"))

	_, err := b.Get(ctx, "skillTreeNodes")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	raw, err := backend.Get(ctx, "a:skillTreeNodes")
	require.NoError(t, err)
	assert.Equal(t, "from-a", raw)
}

func TestPrefixed_EmptyPrefixIsPassthrough(t *testing.T) {
	backend := NewMockStore()
	assert.Same(t, ports.KVStore(backend), ports.Prefixed(backend, ""))
}
