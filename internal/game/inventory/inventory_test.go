package inventory_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
)

func defaultRegistry(t *testing.T) *inventory.Registry {
	t.Helper()
	defs, err := inventory.LoadItems(content.Default(), "items")
	require.NoError(t, err)
	reg, err := inventory.RegistryFrom(defs)
	require.NoError(t, err)
	return reg
}

func TestLoadItems_DefaultContent(t *testing.T) {
	reg := defaultRegistry(t)
	require.Len(t, reg.AllItems(), 5)

	sword, ok := reg.Item("sword")
	require.True(t, ok)
	assert.Equal(t, inventory.KindWeapon, sword.Kind)
	assert.Equal(t, 50, sword.Price)
	assert.Equal(t, "1d8", sword.Damage)

	potion, ok := reg.Item("potion")
	require.True(t, ok)
	assert.Equal(t, 50, potion.Heal)
}

func TestItemDef_Validate(t *testing.T) {
	d := inventory.ItemDef{ID: "club", Name: "Club", Kind: inventory.KindWeapon, Damage: "bonk"}
	assert.Error(t, d.Validate())
	d.Damage = "1d6"
	assert.NoError(t, d.Validate())
	d.Kind = "junk"
	assert.Error(t, d.Validate())
}

func TestLoadItems_RejectsInvalid(t *testing.T) {
	fsys := fstest.MapFS{"items/x.yaml": &fstest.MapFile{Data: []byte("- id: x\n  kind: weapon\n")}}
	_, err := inventory.LoadItems(fsys, "items")
	assert.Error(t, err)
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := inventory.NewRegistry()
	require.NoError(t, reg.RegisterItem(&inventory.ItemDef{ID: "a"}))
	assert.Error(t, reg.RegisterItem(&inventory.ItemDef{ID: "a"}))
}

func TestInventory_AddRemove(t *testing.T) {
	var inv inventory.Inventory
	inv.Add("potion", 2)
	inv.Add("rope", 1)
	inv.Add("potion", 1)

	assert.Equal(t, 3, inv.Count("potion"))
	assert.Equal(t, []inventory.Stack{{ItemID: "potion", Count: 3}, {ItemID: "rope", Count: 1}}, inv.Stacks)

	require.NoError(t, inv.Remove("rope", 1))
	assert.Equal(t, 0, inv.Count("rope"))
	assert.Len(t, inv.Stacks, 1)

	err := inv.Remove("potion", 5)
	assert.True(t, errors.Is(err, inventory.ErrNotCarried))
	assert.Equal(t, 3, inv.Count("potion"), "failed remove must not mutate")
}

func TestInventory_WeaponDamage(t *testing.T) {
	reg := defaultRegistry(t)
	var inv inventory.Inventory
	assert.Equal(t, "1d4", inv.WeaponDamage(reg))

	inv.Add("potion", 1)
	inv.Add("sword", 1)
	assert.Equal(t, "1d8", inv.WeaponDamage(reg))
}

func TestFinalPrice(t *testing.T) {
	assert.Equal(t, 50, inventory.FinalPrice(50, 0))
	assert.Equal(t, 49, inventory.FinalPrice(50, 1))
	assert.Equal(t, 45, inventory.FinalPrice(50, 10))
	assert.Equal(t, 40, inventory.FinalPrice(50, 20))
	assert.Equal(t, 1, inventory.FinalPrice(50, 150))
	assert.Equal(t, 1, inventory.FinalPrice(5, 99))
	assert.Equal(t, 1, inventory.FinalPrice(0, 0))
	assert.Equal(t, 55, inventory.FinalPrice(50, -10))
}

func TestFinalPrice_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.IntRange(0, 10_000).Draw(rt, "base")
		barter := rapid.IntRange(0, 100).Draw(rt, "bartering")
		p := inventory.FinalPrice(base, barter)
		assert.GreaterOrEqual(rt, p, 1)
		if base >= 1 {
			assert.LessOrEqual(rt, p, base)
		}
		if barter < 100 && base*(100-barter) >= 100 {
			assert.Equal(rt, base*(100-barter)/100, p)
		}
	})
}
