package inventory

import (
	"errors"
	"fmt"
)

// ErrNotCarried is returned when removing more of an item than is held.
var ErrNotCarried = errors.New("item not carried")

// Stack is a quantity of a single item definition.
type Stack struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// Inventory is an ordered list of item stacks, at most one per item ID.
// The zero value is an empty inventory.
type Inventory struct {
	Stacks []Stack `json:"stacks"`
}

// Add places n units of itemID into the inventory, merging into an existing
// stack or appending a new one.
//
// Precondition: n > 0.
// Postcondition: Count(itemID) increases by n; stack order is otherwise unchanged.
func (inv *Inventory) Add(itemID string, n int) {
	if n <= 0 {
		return
	}
	for i := range inv.Stacks {
		if inv.Stacks[i].ItemID == itemID {
			inv.Stacks[i].Count += n
			return
		}
	}
	inv.Stacks = append(inv.Stacks, Stack{ItemID: itemID, Count: n})
}

// Remove takes n units of itemID. A stack reduced to zero is dropped.
//
// Postcondition: on error, the inventory is unchanged.
func (inv *Inventory) Remove(itemID string, n int) error {
	for i := range inv.Stacks {
		if inv.Stacks[i].ItemID != itemID {
			continue
		}
		if inv.Stacks[i].Count < n {
			return fmt.Errorf("removing %d %s: %w", n, itemID, ErrNotCarried)
		}
		inv.Stacks[i].Count -= n
		if inv.Stacks[i].Count == 0 {
			inv.Stacks = append(inv.Stacks[:i], inv.Stacks[i+1:]...)
		}
		return nil
	}
	return fmt.Errorf("removing %d %s: %w", n, itemID, ErrNotCarried)
}

// Count returns the number of units of itemID held.
func (inv *Inventory) Count(itemID string) int {
	for _, s := range inv.Stacks {
		if s.ItemID == itemID {
			return s.Count
		}
	}
	return 0
}

// FirstOfKind returns the definition of the first held stack whose item has
// the given kind.
func (inv *Inventory) FirstOfKind(reg *Registry, kind string) (*ItemDef, bool) {
	for _, s := range inv.Stacks {
		if d, ok := reg.Item(s.ItemID); ok && d.Kind == kind {
			return d, true
		}
	}
	return nil, false
}

// WeaponDamage returns the damage formula of the first carried weapon, or
// DefaultWeaponDamage when none is carried.
func (inv *Inventory) WeaponDamage(reg *Registry) string {
	if d, ok := inv.FirstOfKind(reg, KindWeapon); ok && d.Damage != "" {
		return d.Damage
	}
	return DefaultWeaponDamage
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	return Inventory{Stacks: append([]Stack(nil), inv.Stacks...)}
}
