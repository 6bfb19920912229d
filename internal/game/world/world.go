package world

import (
	"fmt"
	"strings"
)

// StartLocation is where every new character begins.
const StartLocation = "tavern"

// World indexes the loaded locations and NPCs. It is read-only after
// construction and safe for concurrent use.
type World struct {
	locations []*Location
	npcs      []*NPC
	locByID   map[string]*Location
	npcByID   map[string]*NPC
}

// New builds a World from locs and npcs, preserving their content order for
// the Find lookups.
//
// Precondition: IDs are unique within each list and every NPC.Location names
// a known location.
// Postcondition: Returns a World or an error on the first violation.
func New(locs []*Location, npcs []*NPC) (*World, error) {
	w := &World{
		locations: locs,
		npcs:      npcs,
		locByID:   make(map[string]*Location, len(locs)),
		npcByID:   make(map[string]*NPC, len(npcs)),
	}
	for _, l := range locs {
		if _, dup := w.locByID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate location ID %q", l.ID)
		}
		w.locByID[l.ID] = l
	}
	for _, n := range npcs {
		if _, dup := w.npcByID[n.ID]; dup {
			return nil, fmt.Errorf("duplicate npc ID %q", n.ID)
		}
		if _, ok := w.locByID[n.Location]; !ok {
			return nil, fmt.Errorf("npc %q: unknown location %q", n.ID, n.Location)
		}
		w.npcByID[n.ID] = n
	}
	return w, nil
}

// Location returns the location with the given ID.
func (w *World) Location(id string) (*Location, bool) {
	l, ok := w.locByID[id]
	return l, ok
}

// NPC returns the NPC with the given ID.
func (w *World) NPC(id string) (*NPC, bool) {
	n, ok := w.npcByID[id]
	return n, ok
}

// Locations returns every location in content order.
func (w *World) Locations() []*Location {
	return append([]*Location(nil), w.locations...)
}

// NPCs returns every NPC in content order.
func (w *World) NPCs() []*NPC {
	return append([]*NPC(nil), w.npcs...)
}

// NPCsAt returns the NPCs whose home is locationID, in content order.
func (w *World) NPCsAt(locationID string) []*NPC {
	var out []*NPC
	for _, n := range w.npcs {
		if n.Location == locationID {
			out = append(out, n)
		}
	}
	return out
}

// FindLocation returns the first location, in content order, whose name or
// ID occurs in text. Matching is case-insensitive.
func (w *World) FindLocation(text string) (*Location, bool) {
	text = strings.ToLower(text)
	for _, l := range w.locations {
		if mentions(text, l.ID, l.Name) {
			return l, true
		}
	}
	return nil, false
}

// FindNPC returns the first NPC, in content order, whose display name occurs
// in text. Matching is case-insensitive.
func (w *World) FindNPC(text string) (*NPC, bool) {
	text = strings.ToLower(text)
	for _, n := range w.npcs {
		if strings.Contains(text, strings.ToLower(n.Name)) {
			return n, true
		}
	}
	return nil, false
}

// Vendor returns the first NPC that sells itemID, preferring one at
// locationID.
func (w *World) Vendor(itemID, locationID string) (*NPC, bool) {
	var fallback *NPC
	for _, n := range w.npcs {
		if !n.Sells(itemID) {
			continue
		}
		if n.Location == locationID {
			return n, true
		}
		if fallback == nil {
			fallback = n
		}
	}
	return fallback, fallback != nil
}
