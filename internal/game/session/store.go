package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrSaveNotFound is returned when loading a save slot that does not exist.
var ErrSaveNotFound = errors.New("save not found")

// DefaultSlot is the slot used when none is named.
const DefaultSlot = "default"

// Store persists snapshots per account and slot.
type Store interface {
	Save(ctx context.Context, account, slot string, snap Snapshot) error
	Load(ctx context.Context, account, slot string) (Snapshot, error)
	List(ctx context.Context, account string) ([]string, error)
	Delete(ctx context.Context, account, slot string) error
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[string]map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: make(map[string]map[string][]byte)}
}

// Save stores snap as JSON, so later mutation of the live state never leaks
// into the saved copy.
func (m *MemoryStore) Save(_ context.Context, account, slot string, snap Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("encoding save %s/%s: %w", account, slot, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saves[account] == nil {
		m.saves[account] = make(map[string][]byte)
	}
	m.saves[account][slot] = data
	return nil
}

// Load returns the snapshot in slot, or ErrSaveNotFound.
func (m *MemoryStore) Load(_ context.Context, account, slot string) (Snapshot, error) {
	m.mu.RLock()
	data, ok := m.saves[account][slot]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("loading %s/%s: %w", account, slot, ErrSaveNotFound)
	}
	return UnmarshalSnapshot(data)
}

// List returns the account's slots, sorted.
func (m *MemoryStore) List(_ context.Context, account string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.saves[account]))
	for slot := range m.saves[account] {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out, nil
}

// Delete removes slot; deleting a missing slot is not an error.
func (m *MemoryStore) Delete(_ context.Context, account, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves[account], slot)
	return nil
}
