// Package world provides the tavern's locations and the NPCs who live in them.
package world

import (
	"errors"
	"fmt"
	"strings"
)

// Location is a place the player can travel to.
type Location struct {
	// ID uniquely identifies the location (e.g. "tavern").
	ID string `yaml:"id"`
	// Name is the display name (e.g. "The Tavern").
	Name string `yaml:"name"`
	// Description is shown on arrival and to the narrator.
	Description string `yaml:"description"`
	// Actions lists the activities available here (rest, shop, hunt, ...).
	Actions []string `yaml:"actions"`
}

// Validate checks location invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (l *Location) Validate() error {
	if l.ID == "" {
		return errors.New("location ID must not be empty")
	}
	if l.Name == "" {
		return fmt.Errorf("location %q: name must not be empty", l.ID)
	}
	return nil
}

// Allows reports whether action is available at the location.
func (l *Location) Allows(action string) bool {
	for _, a := range l.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// RecruitTerms describes what a companion NPC costs and brings to the party.
type RecruitTerms struct {
	Cost   int `yaml:"cost"`
	Level  int `yaml:"level"`
	Health int `yaml:"health"`
}

// NPC is a non-hostile character the player can talk to, trade with or recruit.
type NPC struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Location string `yaml:"location"`
	// BaseRelationship is the starting attitude towards the player, in [-100, 100].
	BaseRelationship int      `yaml:"relationship"`
	Dialogue         string   `yaml:"dialogue"`
	Services         []string `yaml:"services"`
	// Shop lists the item IDs the NPC sells.
	Shop []string `yaml:"shop"`
	// Quests lists the quest IDs the NPC gives.
	Quests  []string      `yaml:"quests"`
	Recruit *RecruitTerms `yaml:"recruit"`
}

// Validate checks NPC invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (n *NPC) Validate() error {
	if n.ID == "" {
		return errors.New("npc ID must not be empty")
	}
	if n.Name == "" {
		return fmt.Errorf("npc %q: name must not be empty", n.ID)
	}
	if n.Location == "" {
		return fmt.Errorf("npc %q: location must not be empty", n.ID)
	}
	if n.BaseRelationship < -100 || n.BaseRelationship > 100 {
		return fmt.Errorf("npc %q: relationship %d outside [-100, 100]", n.ID, n.BaseRelationship)
	}
	if n.Recruit != nil && (n.Recruit.Cost < 0 || n.Recruit.Health < 1) {
		return fmt.Errorf("npc %q: recruit terms need cost >= 0 and health >= 1", n.ID)
	}
	return nil
}

// Sells reports whether itemID is in the NPC's shop.
func (n *NPC) Sells(itemID string) bool {
	for _, id := range n.Shop {
		if id == itemID {
			return true
		}
	}
	return false
}

// Recruitable reports whether the NPC can join the party.
func (n *NPC) Recruitable() bool {
	return n.Recruit != nil
}

// mentions reports whether the lower-cased text contains name or id.
func mentions(text, id, name string) bool {
	return strings.Contains(text, strings.ToLower(name)) || strings.Contains(text, strings.ToLower(id))
}
