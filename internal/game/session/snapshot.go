package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/quest"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// Snapshot is the serializable aggregate of a State.
type Snapshot struct {
	Version   int                  `json:"version"`
	Character *character.Character `json:"character"`
	Inventory inventory.Inventory  `json:"inventory"`
	Party     []Companion          `json:"party"`
	Quests    quest.Log            `json:"quests"`
	Relations map[string]int       `json:"relations"`
	Location  string               `json:"location"`
	Combat    *combat.Session      `json:"combat"`
	History   *dice.History        `json:"history"`
	SavedAt   time.Time            `json:"saved_at"`
}

// Snapshot captures a deep copy of s.
func (s *State) Snapshot() Snapshot {
	rel := make(map[string]int, len(s.Relations))
	for k, v := range s.Relations {
		rel[k] = v
	}
	hist := dice.NewHistory(s.deps.historyLimit())
	for _, r := range s.History.Records() {
		hist.Push(r)
	}
	return Snapshot{
		Version:   SnapshotVersion,
		Character: cloneCharacter(s.Character),
		Inventory: s.Inventory.Clone(),
		Party:     append([]Companion(nil), s.Party...),
		Quests:    s.Quests.Clone(),
		Relations: rel,
		Location:  s.Location,
		Combat:    s.Combat.Clone(),
		History:   hist,
		SavedAt:   time.Now().UTC(),
	}
}

// Marshal encodes snap as JSON.
func (snap Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalSnapshot decodes a JSON snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// Restore rebuilds a State from snap against deps.
//
// Postcondition: Returns an error when snap has no character, an unknown
// version, or references quests or items that deps do not define.
func Restore(snap Snapshot, deps Deps) (*State, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("restoring snapshot: unsupported version %d", snap.Version)
	}
	if snap.Character == nil {
		return nil, errors.New("restoring snapshot: missing character")
	}
	for _, st := range snap.Inventory.Stacks {
		if _, ok := deps.Items.Item(st.ItemID); !ok {
			return nil, fmt.Errorf("restoring snapshot: %w %q", ErrUnknownItem, st.ItemID)
		}
	}
	for _, id := range allQuestIDs(snap.Quests) {
		if _, ok := snap.Quests.Lookup(deps.Quests, id); !ok {
			return nil, fmt.Errorf("restoring snapshot: %w %q", quest.ErrUnknownQuest, id)
		}
	}

	s, err := New(deps, cloneCharacter(snap.Character))
	if err != nil {
		return nil, err
	}
	s.Inventory = snap.Inventory.Clone()
	s.Party = append([]Companion(nil), snap.Party...)
	s.Quests = snap.Quests.Clone()
	for k, v := range snap.Relations {
		s.Relations[k] = v
	}
	if _, ok := deps.World.Location(snap.Location); ok {
		s.Location = snap.Location
	}
	s.Combat = snap.Combat.Clone()
	if snap.History != nil {
		for _, r := range snap.History.Records() {
			s.History.Push(r)
		}
	}
	return s, nil
}

func allQuestIDs(l quest.Log) []string {
	ids := append([]string(nil), l.Rumors...)
	for _, p := range l.Active {
		ids = append(ids, p.QuestID)
	}
	return append(ids, l.Completed...)
}

func cloneCharacter(c *character.Character) *character.Character {
	cp := *c
	if c.Bonuses != nil {
		cp.Bonuses = make(map[character.Skill]int, len(c.Bonuses))
		for k, v := range c.Bonuses {
			cp.Bonuses[k] = v
		}
	}
	return &cp
}
