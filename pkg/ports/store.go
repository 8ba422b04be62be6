package ports

import (
	"context"
)

// KVStore is the durable string storage the persistence layer writes to.
// Any backend offering get/set by key qualifies (file, Redis, database row, memory).
type KVStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrKeyNotFound if the key has never been written.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

type prefixedStore struct {
	next   KVStore
	prefix string
}

// Prefixed namespaces every key of store with prefix, so several trees can share
// a single backend.
func Prefixed(store KVStore, prefix string) KVStore {
	if prefix == "" {
		return store
	}
	return &prefixedStore{next: store, prefix: prefix}
}

func (p *prefixedStore) Get(ctx context.Context, key string) (string, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixedStore) Set(ctx context.Context, key, value string) error {
	return p.next.Set(ctx, p.prefix+key, value)
}
