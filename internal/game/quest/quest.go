// Package quest provides quest definitions and the per-player quest log that
// tracks each quest through rumor, active and completed.
package quest

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cory-johannsen/tavern/content"
)

// Type classifies how a quest is progressed.
type Type string

// Quest types.
const (
	TypeKill     Type = "kill"
	TypeExplore  Type = "explore"
	TypeRetrieve Type = "retrieve"
)

// Reward is granted once when a quest completes.
type Reward struct {
	Gold       int    `yaml:"gold" json:"gold"`
	Experience int    `yaml:"exp" json:"exp"`
	Item       string `yaml:"item,omitempty" json:"item,omitempty"`
}

// Quest is an immutable quest definition. Variations generated at runtime use
// the same type, carrying their base quest's ID in Base.
type Quest struct {
	ID          string `yaml:"id" json:"id"`
	Base        string `yaml:"-" json:"base,omitempty"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Giver       string `yaml:"giver" json:"giver"`
	Type        Type   `yaml:"type" json:"type"`
	Target      string `yaml:"target" json:"target"`
	TargetCount int    `yaml:"target_count" json:"target_count"`
	Location    string `yaml:"location" json:"location"`
	Reward      Reward `yaml:"reward" json:"reward"`
	// Rumor marks quests that may surface through tavern gossip.
	Rumor bool `yaml:"rumor" json:"rumor"`
}

// Goal returns the progress count that completes q: TargetCount for kill
// quests and 1 for everything else.
func (q *Quest) Goal() int {
	if q.Type == TypeKill && q.TargetCount > 0 {
		return q.TargetCount
	}
	return 1
}

// Validate checks quest invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return errors.New("quest ID must not be empty")
	}
	if q.Title == "" {
		return fmt.Errorf("quest %q: title must not be empty", q.ID)
	}
	switch q.Type {
	case TypeKill:
		if q.TargetCount < 1 {
			return fmt.Errorf("quest %q: kill quests need target_count >= 1", q.ID)
		}
	case TypeExplore, TypeRetrieve:
	default:
		return fmt.Errorf("quest %q: unknown type %q", q.ID, q.Type)
	}
	if q.Reward.Gold < 0 || q.Reward.Experience < 0 {
		return fmt.Errorf("quest %q: rewards must be >= 0", q.ID)
	}
	return nil
}

// LoadQuests decodes and validates every quest file in dir of fsys.
func LoadQuests(fsys fs.FS, dir string) ([]*Quest, error) {
	qs, err := content.DecodeAll[*Quest](fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	return qs, nil
}

// Catalog indexes the base quest definitions. It is read-only after
// construction.
type Catalog struct {
	order []string
	byID  map[string]*Quest
}

// NewCatalog indexes qs, preserving order.
//
// Precondition: IDs are unique.
func NewCatalog(qs []*Quest) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Quest, len(qs))}
	for _, q := range qs {
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate quest ID %q", q.ID)
		}
		c.byID[q.ID] = q
		c.order = append(c.order, q.ID)
	}
	return c, nil
}

// Quest returns the base quest with the given ID.
func (c *Catalog) Quest(id string) (*Quest, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// All returns every base quest in content order.
func (c *Catalog) All() []*Quest {
	out := make([]*Quest, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
