// Package inventory provides item definitions, the player's item stacks and
// shop pricing.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/dice"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon     = "weapon"
	KindArmor      = "armor"
	KindConsumable = "consumable"
	KindTool       = "tool"
)

var validKinds = map[string]bool{
	KindWeapon:     true,
	KindArmor:      true,
	KindConsumable: true,
	KindTool:       true,
}

// DefaultWeaponDamage is the unarmed damage formula.
const DefaultWeaponDamage = "1d4"

// ItemDef defines the static properties of an item loaded from YAML.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	Price       int    `yaml:"price"`
	// Damage is the NdM[+K] formula for weapons.
	Damage string `yaml:"damage"`
	// Heal is the health restored when a consumable is used.
	Heal int `yaml:"heal"`
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind must be one of weapon, armor, consumable, tool; got %q", d.Kind))
	}
	if d.Price < 0 {
		errs = append(errs, errors.New("price must be >= 0"))
	}
	if d.Kind == KindWeapon {
		if _, ok := dice.ParseFormula(d.Damage); !ok {
			errs = append(errs, fmt.Errorf("damage %q is not a NdM[+K] formula", d.Damage))
		}
	}
	if d.Heal < 0 {
		errs = append(errs, errors.New("heal must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q validation failed: %v", d.ID, errs)
	}
	return nil
}

// LoadItems decodes every item file in dir of fsys and validates each entry.
//
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(fsys fs.FS, dir string) ([]*ItemDef, error) {
	items, err := content.DecodeAll[*ItemDef](fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: %w", err)
	}
	for _, d := range items {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: %w", err)
		}
	}
	return items, nil
}
