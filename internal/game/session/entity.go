package session

import (
	"fmt"
	"sync"
)

// Entity routes lines pushed by other players to a buffered channel that the
// owning connection drains.
type Entity struct {
	account string
	events  chan string
	mu      sync.Mutex
	closed  bool
}

// NewEntity creates an Entity for account.
//
// Postcondition: Returns an Entity with an open events channel.
func NewEntity(account string, bufferSize int) *Entity {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Entity{account: account, events: make(chan string, bufferSize)}
}

// Account returns the owning account name.
func (e *Entity) Account() string {
	return e.account
}

// Push enqueues line without blocking.
//
// Postcondition: returns an error if the entity is closed or its buffer is full.
func (e *Entity) Push(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("entity %s is closed", e.account)
	}
	select {
	case e.events <- line:
		return nil
	default:
		return fmt.Errorf("entity %s event buffer full", e.account)
	}
}

// Events returns the read-only events channel. It is closed by Close.
func (e *Entity) Events() <-chan string {
	return e.events
}

// Close marks the entity closed and closes its channel. Closing twice is a no-op.
func (e *Entity) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.events)
	}
	return nil
}
