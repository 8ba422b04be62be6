package middleware_test

import (
	"context"

	"github.com/aretw0/skilltree/pkg/domain"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]string),
	}
}

func (s *MockStore) Set(ctx context.Context, key, value string) error {
	s.data[key] = value
	return nil
}

func (s *MockStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return value, nil
}
