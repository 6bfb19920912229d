// Package session holds one player's live game state and the ledger
// operations that mutate it, together with the snapshot format used to save
// and restore it.
package session

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/world"
)

var (
	// ErrInsufficientGold is returned when a purchase or recruitment costs
	// more than the character carries.
	ErrInsufficientGold = character.ErrInsufficientGold
	// ErrAlreadyInParty is returned when recruiting a companion twice.
	ErrAlreadyInParty = errors.New("already in party")
	// ErrNotRecruitable is returned for NPCs that cannot join the party.
	ErrNotRecruitable = errors.New("cannot be recruited")
	// ErrNoQuest is returned when an action needs an active quest of some type.
	ErrNoQuest = errors.New("no suitable active quest")
	// ErrUnknownNPC is returned for an NPC ID that is not in the world.
	ErrUnknownNPC = errors.New("unknown npc")
	// ErrUnknownItem is returned for an item ID that is not registered.
	ErrUnknownItem = errors.New("unknown item")
	// ErrNotForSale is returned when buying an item the seller does not stock.
	ErrNotForSale = errors.New("not for sale")
	// ErrNotUsable is returned when using an item with no effect.
	ErrNotUsable = errors.New("item cannot be used")
	// ErrUnknownLocation is returned for a location ID that is not in the world.
	ErrUnknownLocation = errors.New("unknown location")
)

// Relationship bounds.
const (
	MinRelationship = -100
	MaxRelationship = 100
)

// Deps are the shared, read-only rules a State operates against.
type Deps struct {
	World  *world.World
	Items  *inventory.Registry
	Quests *quest.Catalog
	Combat *combat.Engine
	Roller *dice.Roller
	// HistoryLimit bounds the roll history; 0 uses dice.HistoryLimit.
	HistoryLimit int
}

// Validate reports a missing dependency.
func (d Deps) Validate() error {
	switch {
	case d.World == nil:
		return errors.New("session deps: world must not be nil")
	case d.Items == nil:
		return errors.New("session deps: items must not be nil")
	case d.Quests == nil:
		return errors.New("session deps: quests must not be nil")
	case d.Combat == nil:
		return errors.New("session deps: combat engine must not be nil")
	case d.Roller == nil:
		return errors.New("session deps: roller must not be nil")
	}
	return nil
}

// Companion is a recruited party member.
type Companion struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Level     int    `json:"level"`
	Health    int    `json:"health"`
	MaxHealth int    `json:"max_health"`
}

// State is one player's game. It is the explicit context passed to every
// game operation; it is not safe for concurrent use, callers serialize
// access (see action.Resolver).
//
// Invariant: Combat is nil or the single active session.
type State struct {
	deps Deps

	Character *character.Character
	Inventory inventory.Inventory
	Party     []Companion
	Quests    quest.Log
	// Relations holds relationship overrides keyed by NPC ID.
	Relations map[string]int
	Location  string
	Combat    *combat.Session
	History   *dice.History
}

// New starts a fresh game for c at the world's start location.
//
// Precondition: deps must pass Validate and c must be non-nil.
func New(deps Deps, c *character.Character) (*State, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("session: character must not be nil")
	}
	return &State{
		deps:      deps,
		Character: c,
		Relations: make(map[string]int),
		Location:  world.StartLocation,
		History:   dice.NewHistory(deps.historyLimit()),
	}, nil
}

func (d Deps) historyLimit() int {
	if d.HistoryLimit > 0 {
		return d.HistoryLimit
	}
	return dice.HistoryLimit
}

// Deps returns the rules this state was built with.
func (s *State) Deps() Deps {
	return s.deps
}

// Relationship returns the live relationship with npcID, falling back to the
// NPC's base value until the first adjustment.
func (s *State) Relationship(npcID string) int {
	if v, ok := s.Relations[npcID]; ok {
		return v
	}
	if n, ok := s.deps.World.NPC(npcID); ok {
		return n.BaseRelationship
	}
	return 0
}

// AdjustRelationship adds delta to the relationship with npcID, clamped to
// [MinRelationship, MaxRelationship], and returns the new value.
func (s *State) AdjustRelationship(npcID string, delta int) int {
	v := s.Relationship(npcID) + delta
	if v < MinRelationship {
		v = MinRelationship
	}
	if v > MaxRelationship {
		v = MaxRelationship
	}
	if s.Relations == nil {
		s.Relations = make(map[string]int)
	}
	s.Relations[npcID] = v
	return v
}

// CurrentLocation returns the location the player is at.
func (s *State) CurrentLocation() *world.Location {
	if l, ok := s.deps.World.Location(s.Location); ok {
		return l
	}
	l, _ := s.deps.World.Location(world.StartLocation)
	return l
}

// Travel moves the player to locationID.
func (s *State) Travel(locationID string) (*world.Location, error) {
	l, ok := s.deps.World.Location(locationID)
	if !ok {
		return nil, fmt.Errorf("travelling to %q: %w", locationID, ErrUnknownLocation)
	}
	s.Location = l.ID
	return l, nil
}

// Weapon returns the damage formula the player attacks with.
func (s *State) Weapon() string {
	return s.Inventory.WeaponDamage(s.deps.Items)
}

// InParty reports whether npcID has been recruited.
func (s *State) InParty(npcID string) bool {
	for _, c := range s.Party {
		if c.ID == npcID {
			return true
		}
	}
	return false
}
