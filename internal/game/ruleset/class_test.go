package ruleset_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
)

func TestLoadClasses_DefaultContent(t *testing.T) {
	classes, err := ruleset.LoadClasses(content.Default(), "classes")
	require.NoError(t, err)
	require.Len(t, classes, 10)

	reg, err := ruleset.NewRegistry(classes)
	require.NoError(t, err)

	fighter, err := reg.Class("fighter")
	require.NoError(t, err)
	assert.Equal(t, "Fighter", fighter.Name)
	assert.Equal(t, 10, fighter.HitDie)
	assert.Equal(t, 50, fighter.StartingGold)
	assert.Equal(t, ruleset.Abilities{
		Strength: 16, Dexterity: 13, Constitution: 15,
		Intelligence: 10, Wisdom: 12, Charisma: 11,
	}, fighter.Abilities)

	barb, err := reg.Class("Barbarian")
	require.NoError(t, err)
	assert.Equal(t, 12, barb.HitDie)

	ids := make([]string, 0, 10)
	for _, c := range reg.All() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{
		"fighter", "rogue", "wizard", "cleric", "ranger",
		"paladin", "barbarian", "bard", "monk", "warlock",
	}, ids)
}

func TestRegistry_UnknownClass(t *testing.T) {
	reg, err := ruleset.NewRegistry(nil)
	require.NoError(t, err)
	_, err = reg.Class("necromancer")
	assert.ErrorIs(t, err, ruleset.ErrUnknownClass)
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	_, err := ruleset.NewRegistry([]*ruleset.Class{{ID: "a", Name: "A", HitDie: 6}, {ID: "a", Name: "A2", HitDie: 8}})
	assert.Error(t, err)
}

func TestLoadClasses_ValidationCollectsErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"classes/bad.yaml": &fstest.MapFile{Data: []byte("- id: bad\n  hit_die: 0\n  starting_gold: -1\n")},
	}
	_, err := ruleset.LoadClasses(fsys, "classes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "hit_die must be >= 1")
	assert.Contains(t, err.Error(), "starting_gold must be >= 0")
}

func TestLoadClasses_MissingDir(t *testing.T) {
	_, err := ruleset.LoadClasses(fstest.MapFS{}, "classes")
	assert.Error(t, err)
}
