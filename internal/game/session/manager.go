package session

import (
	"fmt"
	"sort"
	"sync"
)

// Player is a connected account and the game it is playing.
type Player struct {
	Account string
	Game    *State
	Entity  *Entity
}

// Manager tracks connected players and which location each occupies.
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	players map[string]*Player         // account -> player
	present map[string]map[string]bool // location -> accounts
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		players: make(map[string]*Player),
		present: make(map[string]map[string]bool),
	}
}

// Add registers account as playing game.
//
// Precondition: account must be non-empty and game non-nil.
// Postcondition: Returns an error if the account is already connected.
func (m *Manager) Add(account string, game *State) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.players[account]; exists {
		return nil, fmt.Errorf("player %q already connected", account)
	}
	p := &Player{Account: account, Game: game, Entity: NewEntity(account, 64)}
	m.players[account] = p
	m.enter(game.Location, account)
	return p, nil
}

// Remove unregisters account and closes its entity.
func (m *Manager) Remove(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.players[account]
	if !exists {
		return fmt.Errorf("player %q not found", account)
	}
	m.leaveAll(account)
	_ = p.Entity.Close()
	delete(m.players, account)
	return nil
}

// Replace swaps the game an account is playing, as after load or new game.
func (m *Manager) Replace(account string, game *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, exists := m.players[account]
	if !exists {
		return fmt.Errorf("player %q not found", account)
	}
	p.Game = game
	m.leaveAll(account)
	m.enter(game.Location, account)
	return nil
}

// Sync records the player's current location after a game action moved it.
func (m *Manager) Sync(account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[account]
	if !ok {
		return
	}
	m.leaveAll(account)
	m.enter(p.Game.Location, account)
}

// At returns the accounts present at location, sorted.
func (m *Manager) At(location string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.present[location]))
	for a := range m.present[location] {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Broadcast pushes line to every player at location except from. Full or
// closed entities are skipped.
func (m *Manager) Broadcast(location, from, line string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sent := 0
	for a := range m.present[location] {
		if a == from {
			continue
		}
		if err := m.players[a].Entity.Push(line); err == nil {
			sent++
		}
	}
	return sent
}

// Count returns the number of connected players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

func (m *Manager) enter(location, account string) {
	if m.present[location] == nil {
		m.present[location] = make(map[string]bool)
	}
	m.present[location][account] = true
}

func (m *Manager) leaveAll(account string) {
	for loc, set := range m.present {
		delete(set, account)
		if len(set) == 0 {
			delete(m.present, loc)
		}
	}
}
