package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/graingrove-backend/internal/notices"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

// Manager opens session stores and serializes access to each session within this process.
// Across processes the snapshot is last write wins.
type Manager struct {
	snapshots SnapshotStore
	logg      *logger.Logger
	locks     keyedMutex
}

func NewManager(snapshots SnapshotStore, logg *logger.Logger) (*Manager, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	return &Manager{snapshots: snapshots, logg: logg}, nil
}

// View returns the session's current cart.
func (m *Manager) View(ctx context.Context, sessionID string) (Cart, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	store, err := Open(ctx, sessionID, m.snapshots, notices.FromContext(ctx), m.logg)
	if err != nil {
		return Cart{}, err
	}
	return store.Cart(), nil
}

// Update opens the session's store, runs fn against it while holding the session lock and
// returns the resulting cart. Notices go to the collector attached to ctx.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*Store) error) (Cart, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	store, err := Open(ctx, sessionID, m.snapshots, notices.FromContext(ctx), m.logg)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(store); err != nil {
		return Cart{}, err
	}
	return store.Cart(), nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns its release func. Entries are dropped once unused.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*refMutex{}
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &refMutex{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
