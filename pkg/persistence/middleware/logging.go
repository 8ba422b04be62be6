package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.KVStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store round-trip at debug level, with its
// duration and payload size. Failures other than a missing key log at warn.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.KVStore) ports.KVStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	value, err := m.next.Get(ctx, key)
	switch {
	case err == nil:
		m.logger.Debug("store get", "key", key, "bytes", len(value), "duration", time.Since(start))
	case errors.Is(err, domain.ErrKeyNotFound):
		m.logger.Debug("store get: key absent", "key", key)
	default:
		m.logger.Warn("store get failed", "key", key, "err", err)
	}
	return value, err
}

func (m *loggingMiddleware) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := m.next.Set(ctx, key, value)
	if err != nil {
		m.logger.Warn("store set failed", "key", key, "err", err)
		return err
	}
	m.logger.Debug("store set", "key", key, "bytes", len(value), "duration", time.Since(start))
	return nil
}
