package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/skilltree/internal/logging"
	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/ports"
)

// DefaultTreeID names the tree used when none is given. Its keys are stored
// without a prefix, so a single-tree store reads the same with or without a
// Manager in front of it.
const DefaultTreeID = "default"

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// ErrInvalidTreeID is returned for tree ids that cannot be used as key prefixes.
var ErrInvalidTreeID = errors.New("invalid tree id")

var treeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Tree is what the Manager hands out. *skilltree.Tree satisfies it.
type Tree interface {
	ports.TreeService
	Reload(ctx context.Context) error
	Close(ctx context.Context) error
}

// Opener opens a tree over a store already namespaced for it.
type Opener func(ctx context.Context, store ports.KVStore) (Tree, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps one open Tree per id over a shared store, ensuring safe
// concurrent operations. It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.KVStore
	open  Opener

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Map of active locks
	trees map[string]Tree

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking. Each WithTree call then reloads the
// tree from the store before running and saves it before releasing the lock,
// so replicas sharing the store see each other's changes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager. Tree "x" stores its keys as "x.<key>", except
// DefaultTreeID which uses the bare keys.
func NewManager(store ports.KVStore, open Opener, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		open:    open,
		locks:   make(map[string]*lockEntry),
		trees:   make(map[string]Tree),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ValidateTreeID checks that id is usable as a key prefix.
func ValidateTreeID(id string) error {
	if !treeIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidTreeID, id)
	}
	return nil
}

// KeyPrefix returns the prefix applied to the store keys of treeID.
func KeyPrefix(treeID string) string {
	if treeID == DefaultTreeID {
		return ""
	}
	return treeID + "."
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(treeID) after unlocking.
func (m *Manager) acquire(treeID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[treeID]
	if !exists {
		entry = &lockEntry{}
		m.locks[treeID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(treeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[treeID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, treeID)
	}
}

// withLocalLock runs fn while holding the in-process lock for treeID.
func (m *Manager) withLocalLock(treeID string, fn func() error) error {
	entry := m.acquire(treeID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(treeID)
	}()
	return fn()
}

// Get returns the tree with the given id, opening it on first use.
func (m *Manager) Get(ctx context.Context, treeID string) (Tree, error) {
	if err := ValidateTreeID(treeID); err != nil {
		return nil, err
	}
	var tree Tree
	err := m.withLocalLock(treeID, func() error {
		var err error
		tree, err = m.getLocked(ctx, treeID)
		return err
	})
	return tree, err
}

func (m *Manager) getLocked(ctx context.Context, treeID string) (Tree, error) {
	m.mu.Lock()
	tree, ok := m.trees[treeID]
	m.mu.Unlock()
	if ok {
		return tree, nil
	}

	tree, err := m.open(ctx, ports.Prefixed(m.store, KeyPrefix(treeID)))
	if err != nil {
		return nil, fmt.Errorf("failed to open tree %s: %w", treeID, err)
	}
	m.mu.Lock()
	m.trees[treeID] = tree
	m.mu.Unlock()
	m.logger.Debug("tree opened", "tree_id", treeID)
	return tree, nil
}

// Lookup returns an already open tree without opening it.
func (m *Manager) Lookup(treeID string) (Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tree, ok := m.trees[treeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, treeID)
	}
	return tree, nil
}

// WithTree runs fn with exclusive access to the tree, across replicas when a
// distributed locker is configured.
func (m *Manager) WithTree(ctx context.Context, treeID string, fn func(context.Context, Tree) error) error {
	if err := ValidateTreeID(treeID); err != nil {
		return err
	}
	return m.withLocalLock(treeID, func() error {
		tree, err := m.getLocked(ctx, treeID)
		if err != nil {
			return err
		}
		if m.locker == nil {
			return fn(ctx, tree)
		}

		unlock, err := m.locker.Lock(ctx, treeID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"tree_id", treeID,
					"err", err,
				)
			}
		}()

		if err := tree.Reload(ctx); err != nil {
			return fmt.Errorf("failed to reload tree %s: %w", treeID, err)
		}
		if err := fn(ctx, tree); err != nil {
			return err
		}
		return tree.Flush(ctx)
	})
}

// Evict closes a tree and forgets it. The stored data is kept.
func (m *Manager) Evict(ctx context.Context, treeID string) error {
	return m.withLocalLock(treeID, func() error {
		m.mu.Lock()
		tree, ok := m.trees[treeID]
		delete(m.trees, treeID)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrTreeNotFound, treeID)
		}
		return tree.Close(ctx)
	})
}

// List returns the ids of the open trees, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.trees))
	for id := range m.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every open tree, saving pending changes.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error
	for _, id := range m.List() {
		if err := m.Evict(ctx, id); err != nil && !errors.Is(err, domain.ErrTreeNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
