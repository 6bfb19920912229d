// Package npc provides enemy template definitions and the per-encounter
// instances cloned from them.
package npc

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/dice"
)

// Template defines an immutable enemy archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Level       int    `yaml:"level"`
	MaxHP       int    `yaml:"max_hp"`
	AC          int    `yaml:"ac"`
	AttackBonus int    `yaml:"attack_bonus"`
	Damage      string `yaml:"damage"` // "NdM[+K]"
	ExpReward   int    `yaml:"exp_reward"`
	GoldReward  int    `yaml:"gold_reward"`
	Difficulty  string `yaml:"difficulty"` // easy | medium | hard
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, AC >= 1, Damage parses, and rewards are non-negative;
// returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("enemy template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("enemy template %q: max_hp must be >= 1", t.ID)
	}
	if t.AC < 1 {
		return fmt.Errorf("enemy template %q: ac must be >= 1", t.ID)
	}
	if _, ok := dice.ParseFormula(t.Damage); !ok {
		return fmt.Errorf("enemy template %q: damage %q is not a NdM[+K] formula", t.ID, t.Damage)
	}
	if t.ExpReward < 0 || t.GoldReward < 0 {
		return fmt.Errorf("enemy template %q: rewards must be >= 0", t.ID)
	}
	return nil
}

// LoadTemplates decodes and validates every enemy file in dir of fsys.
//
// Postcondition: Returns all templates or an error on the first parse or
// validate failure.
func LoadTemplates(fsys fs.FS, dir string) ([]*Template, error) {
	tmpls, err := content.DecodeAll[*Template](fsys, dir)
	if err != nil {
		return nil, err
	}
	for _, t := range tmpls {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return tmpls, nil
}

// Registry indexes templates by ID. It is read-only after construction.
type Registry struct {
	byID map[string]*Template
}

// NewRegistry indexes tmpls.
//
// Precondition: template IDs must be unique.
func NewRegistry(tmpls []*Template) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Template, len(tmpls))}
	for _, t := range tmpls {
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy template id %q", t.ID)
		}
		r.byID[t.ID] = t
	}
	return r, nil
}

// Template returns the template for id.
func (r *Registry) Template(id string) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// All returns every template sorted by ID.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
