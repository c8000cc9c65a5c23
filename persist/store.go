package persist

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store persists snapshots keyed by session ID. Implementations must be
// safe for concurrent use.
type Store interface {
	// Save persists a snapshot, overwriting any existing one for the same
	// session ID.
	Save(ctx context.Context, snap Snapshot) error

	// Load retrieves the snapshot for the given session ID.
	Load(ctx context.Context, sessionID string) (Snapshot, error)

	// Delete removes the snapshot for the given session ID. Missing
	// snapshots are ignored.
	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs with stored snapshots, sorted.
	List(ctx context.Context) ([]string, error)
}

type memoryStore struct {
	snaps map[string]Snapshot
	mu    sync.RWMutex
}

// NewMemoryStore creates a Store backed by a process-local map. Snapshots
// are lost when the process exits — suitable for tests and development.
func NewMemoryStore() Store {
	return &memoryStore{snaps: make(map[string]Snapshot)}
}

func (m *memoryStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.SessionID] = snap
	return nil
}

func (m *memoryStore) Load(_ context.Context, sessionID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, exists := m.snaps[sessionID]
	if !exists {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return snap, nil
}

func (m *memoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, sessionID)
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.snaps))
	for id := range m.snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var (
	stores = map[string]Store{
		"memory": NewMemoryStore(),
	}
	mutex sync.RWMutex
)

// GetStore retrieves a Store by name from the registry. The "memory" store
// is pre-registered; file stores are registered by the caller because they
// need a root directory.
func GetStore(name string) (Store, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	store, exists := stores[name]
	if !exists {
		return nil, fmt.Errorf("unknown snapshot store: %s", name)
	}
	return store, nil
}

// RegisterStore adds or replaces a named Store in the global registry.
func RegisterStore(name string, store Store) {
	mutex.Lock()
	defer mutex.Unlock()
	stores[name] = store
}
