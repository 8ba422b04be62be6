package config

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/aretw0/skilltree/pkg/adapters/file"
	"github.com/aretw0/skilltree/pkg/adapters/memory"
	"github.com/aretw0/skilltree/pkg/adapters/redis"
	"github.com/aretw0/skilltree/pkg/adapters/sqlite"
	"github.com/aretw0/skilltree/pkg/persistence/middleware"
	"github.com/aretw0/skilltree/pkg/ports"
)

// Backend is an opened store together with its optional distributed locker.
type Backend struct {
	Store  ports.KVStore
	Locker ports.DistributedLocker
	Close  func() error
}

// OpenStore builds the configured store. Values are encrypted when an
// encryption key is set, and every access is logged at DEBUG level.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Close: func() error { return nil }}

	switch cfg.Store {
	case StoreMemory:
		b.Store = memory.NewStore()
	case StoreFile:
		b.Store = file.New(cfg.Dir)
	case StoreRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix), redis.WithTTL(cfg.Redis.TTL))
		if err := rs.Client().Ping(ctx).Err(); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
		}
		b.Store = rs
		b.Locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
		b.Close = rs.Close
	case StoreSQLite:
		db, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b.Store = db
		b.Close = db.Close
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	mws := []middleware.Middleware{middleware.NewLoggingMiddleware(logger)}
	if cfg.EncryptionKey != "" {
		key, err := ParseKey(cfg.EncryptionKey)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.Store = middleware.Chain(b.Store, mws...)

	return b, nil
}

// ParseKey decodes a 32 byte AES key given as base64 or hex.
func ParseKey(s string) ([]byte, error) {
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, fmt.Errorf("encryption key must be 32 bytes, base64 or hex encoded")
}
